package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv/internal/config"
)

func TestDefaultFillsDocumentedDefaults(t *testing.T) {
	c := config.Default()
	require.Equal(t, 0.01, c.GeometryTolerance)
	require.Equal(t, int64(50*1024*1024), c.MaxFileSize)
	require.Equal(t, "right-handed", c.CoordinateSystem)
	require.Equal(t, "mm", c.Units)
	require.Equal(t, "dstv", c.FeatureIDPrefix)
	require.Equal(t, "final-shape", c.TubeContourConvention)
	require.Equal(t, 30*time.Second, c.StageTimeout)
	require.True(t, c.AbortOnError)
	require.True(t, c.SupportAllBlocks)
	require.True(t, c.ValidateContourClosure)
}

func TestLoadAppliesFileValuesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
strict_mode = true
units = "inch"
stage_timeout_ms = 5000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, c.StrictMode)
	require.Equal(t, "inch", c.Units)
	require.Equal(t, 5*time.Second, c.StageTimeout)
	// unset fields still get their documented defaults.
	require.Equal(t, "right-handed", c.CoordinateSystem)
	require.Equal(t, "dstv", c.FeatureIDPrefix)
	require.True(t, c.AbortOnError)
	require.True(t, c.SupportAllBlocks)
	require.True(t, c.ValidateContourClosure)
}

func TestLoadAbortOnErrorExplicitFalseIsRespected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("abort_on_error = false\n"), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.False(t, c.AbortOnError)
}

func TestLoadSupportAllBlocksAndValidateContourClosureExplicitFalseIsRespected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "support_all_blocks = false\nvalidate_contour_closure = false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.False(t, c.SupportAllBlocks)
	require.False(t, c.ValidateContourClosure)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}
