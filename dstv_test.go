package dstv_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv"
	"github.com/dstvimport/dstv/coord"
	"github.com/dstvimport/dstv/normalize"
)

// s1Source is spec §8's S1 fixture with its blank phase-number line
// filled ("PH1") and its two trailing zero fields appended. The lexer
// only hands the parser significant tokens (spec §4.3 excludes
// Newline), so a literally-blank ST field collapses and every field
// after it shifts one position; the DSTV wire format has no token for
// "this field is empty", so a blank positional value can't survive
// this pipeline's tokenization model. The numeric values (length,
// height, width, hole coordinates) are otherwise verbatim.
const s1Source = "ST\nORD1\nDRW1\nPH1\nM1\nS235\n1\nIPE200\nI\n1000.00\n200.00\n100.00\n5.60\n8.50\n12.00\n0\n0\nBO\nv 500.00u 100.00 22.00 0.00\nEN\n"

func TestImportS1SingleThroughHole(t *testing.T) {
	res, err := dstv.Import([]byte(s1Source), dstv.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, 1.0, res.ConformityScore)
	require.Empty(t, res.Diagnostics)

	require.Equal(t, coord.IProfile, res.Profile.Type)
	require.Len(t, res.Profile.Features, 1)
	require.Equal(t, normalize.Hole, res.Profile.Features[0].Type)
}

func TestImportS6InnerContourOutsideOuterWarnsButSucceeds(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\n" +
		"AK\nv0.00 0.00\nv1000.00 0.00\nv1000.00 100.00\nv0.00 100.00\n" +
		"IK\nv2000.00 2000.00\nv2100.00 2000.00\nv2100.00 2100.00\nEN\n"
	cfg := dstv.DefaultConfig()
	cfg.StrictMode = false
	res, err := dstv.Import([]byte(src), cfg)
	require.NoError(t, err)
	require.Less(t, res.ConformityScore, 1.0)
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == "CONT_NOT_CONTAINED" {
			found = true
		}
	}
	require.True(t, found)
}

func TestImportEmptyFileIsHardError(t *testing.T) {
	_, err := dstv.Import([]byte(""), dstv.DefaultConfig())
	require.Error(t, err)
}

func TestImportMissingENNonStrictSucceeds(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\n"
	cfg := dstv.DefaultConfig()
	cfg.StrictMode = false
	res, err := dstv.Import([]byte(src), cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Profile)
}

func TestImportMissingENStrictFails(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\n"
	cfg := dstv.DefaultConfig()
	cfg.StrictMode = true
	_, err := dstv.Import([]byte(src), cfg)
	require.Error(t, err)
}

func TestImportOversizedInputRejected(t *testing.T) {
	cfg := dstv.DefaultConfig()
	cfg.MaxFileSize = 4
	_, err := dstv.Import([]byte(s1Source), cfg)
	require.Error(t, err)
}

func TestImportTubeContourConventionToggleChangesClassification(t *testing.T) {
	// straight-cut geometry on a tube end: default "final-shape" convention
	// classifies it via the tube heuristics, "cut-to-make" treats the AK
	// as the cut itself and emits a plain contour instead.
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nSHS1\nM\n1000\n30\n30\n3\n3\n0\n0\n3\n" +
		"AK\nv0.00 0.00\nv50.00 0.00\nv50.00 30.00\nv0.00 30.00\nv0.00 0.00\nEN\n"

	cfgDefault := dstv.DefaultConfig()
	resDefault, err := dstv.Import([]byte(src), cfgDefault)
	require.NoError(t, err)

	cfgCutToMake := dstv.DefaultConfig()
	cfgCutToMake.TubeContourConvention = "cut-to-make"
	resCutToMake, err := dstv.Import([]byte(src), cfgCutToMake)
	require.NoError(t, err)

	defaultDetected := detectedAsOf(resDefault.Profile.Features)
	cutToMakeDetected := detectedAsOf(resCutToMake.Profile.Features)
	require.NotEqual(t, defaultDetected, cutToMakeDetected)
	require.Equal(t, "plain-contour", cutToMakeDetected)
}

func detectedAsOf(features []normalize.Feature) string {
	for _, f := range features {
		if f.Metadata.OriginalBlockType.String() == "AK" {
			return f.Metadata.DetectedAs
		}
	}
	return ""
}
