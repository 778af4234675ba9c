package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/lexer"
	"github.com/dstvimport/dstv/parser"
)

func parse(t *testing.T, src string, opt parser.Options) ([]ast.ParsedBlock, []ast.Diagnostic) {
	t.Helper()
	toks := lexer.Lex([]byte(src), lexer.DefaultOptions())
	blocks, diags, err := parser.Parse(toks, opt)
	require.NoError(t, err)
	return blocks, diags
}

const s1Source = "ST\nORD1\nDRW1\n\nM1\nS235\n1\nIPE200\nI\n1000.00\n200.00\n100.00\n5.60\n8.50\n12.00\nBO\nv 500.00u 100.00 22.00 0.00\nEN\n"

func TestParseSTBlock(t *testing.T) {
	blocks, _ := parse(t, s1Source, parser.DefaultOptions())
	require.NotEmpty(t, blocks)
	require.Equal(t, ast.ST, blocks[0].Type)
	st := blocks[0].Data.(ast.STData)
	require.Equal(t, "ORD1", st.OrderNumber)
	require.Equal(t, "DRW1", st.DrawingNumber)
	require.Equal(t, 1, st.Quantity)
	require.Equal(t, "IPE200", st.ProfileName)
	require.Equal(t, ast.ProfileI, st.ProfileTypeCode)
	require.Equal(t, 1000.00, st.Length)
	require.Equal(t, 200.00, st.Height)
	require.Equal(t, 100.00, st.Width)
	require.Equal(t, 5.60, st.FlangeThickness)
	require.Equal(t, 8.50, st.WebThickness)
	require.Equal(t, 12.00, st.RootRadius)
}

func TestParseBOSingleHole(t *testing.T) {
	blocks, _ := parse(t, s1Source, parser.DefaultOptions())
	var bo *ast.BOData
	for _, b := range blocks {
		if b.Type == ast.BO {
			d := b.Data.(ast.BOData)
			bo = &d
		}
	}
	require.NotNil(t, bo)
	require.Len(t, bo.Holes, 1)
	h := bo.Holes[0]
	require.Equal(t, ast.FaceV, h.Face)
	require.Equal(t, 500.0, h.X)
	require.Equal(t, 100.0, h.Y)
	require.Equal(t, 22.0, h.Diameter)
	require.Equal(t, 0.0, h.Depth)
}

func TestParseBOMultiHole(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nBO\nv 100.00 50.00 20.00 0.00\nv 200.00 50.00 20.00 0.00\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var bo ast.BOData
	for _, b := range blocks {
		if b.Type == ast.BO {
			bo = b.Data.(ast.BOData)
		}
	}
	require.Len(t, bo.Holes, 2)
	require.Equal(t, 100.0, bo.Holes[0].X)
	require.Equal(t, 200.0, bo.Holes[1].X)
}

func TestParseHoleDiameterZeroRejectedLater(t *testing.T) {
	// parser accepts zero diameter syntactically; validator rejects it.
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nBO\nv 100.00 50.00 0.00 0.00\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var bo ast.BOData
	for _, b := range blocks {
		if b.Type == ast.BO {
			bo = b.Data.(ast.BOData)
		}
	}
	require.Len(t, bo.Holes, 1)
	require.Equal(t, 0.0, bo.Holes[0].Diameter)
}

func TestParseAKContourFusedFacePrefix(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nAK\nv0.00 0.00\nv1000.00 0.00\nv1000.00 100.00\nv0.00 100.00\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var ak ast.ContourData
	for _, b := range blocks {
		if b.Type == ast.AK {
			ak = b.Data.(ast.ContourData)
		}
	}
	require.Len(t, ak.Points, 4)
	require.Equal(t, ast.FaceV, ak.Points[0].Face)
	require.Equal(t, 1000.0, ak.Points[1].X)
}

func TestParseContourTooFewPointsFailsToParse(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nAK\nv0.00 0.00\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var found, hasCont002 bool
	for _, b := range blocks {
		if b.Type == ast.AK {
			found = true
			require.False(t, b.Parsed)
			for _, d := range b.LocalDiagnostics {
				if d.Code == "CONT_002" {
					hasCont002 = true
				}
			}
		}
	}
	require.True(t, found)
	require.True(t, hasCont002)
}

func TestParseSIMarking(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nSI\nv 2.00 2.00 0 10 M1002\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var si ast.SIData
	for _, b := range blocks {
		if b.Type == ast.SI {
			si = b.Data.(ast.SIData)
		}
	}
	require.Equal(t, ast.FaceV, si.Face)
	require.Equal(t, 2.0, si.X)
	require.Equal(t, 2.0, si.Y)
	require.Equal(t, 10.0, si.TextHeight)
	require.Equal(t, "M1002", si.Text)
}

func TestParseSCRectCut(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nSC\n10.00 20.00 30.00 40.00\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var sc ast.SCData
	for _, b := range blocks {
		if b.Type == ast.SC {
			sc = b.Data.(ast.SCData)
		}
	}
	require.Equal(t, 10.0, sc.X)
	require.Equal(t, 30.0, sc.Width)
	require.Equal(t, 40.0, sc.Height)
}

func TestParseUnsupportedBlockInBasicSetWarns(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nTO\n1 2 3\nEN\n"
	blocks, diags := parse(t, src, parser.Options{StrictMode: false, SupportAllBlocks: false})
	for _, b := range blocks {
		require.NotEqual(t, ast.TO, b.Type)
	}
	var warned bool
	for _, d := range diags {
		if d.Code == "GLOBAL_UNSUPPORTED_BLOCK" {
			warned = true
		}
	}
	require.True(t, warned)
}

func TestParseUnsupportedBlockStrictFails(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nTO\n1 2 3\nEN\n"
	toks := lexer.Lex([]byte(src), lexer.DefaultOptions())
	_, _, err := parser.Parse(toks, parser.Options{StrictMode: true, SupportAllBlocks: false})
	require.Error(t, err)
}

func TestParseGenericFallbackForUnregisteredBlock(t *testing.T) {
	src := "ST\nORD1\nDRW1\nPH1\nPC1\nS235\n1\nIPE200\nI\n1000\n200\n100\n5.6\n8.5\n12\n0\n0\nKA\n1 2 3\nEN\n"
	blocks, _ := parse(t, src, parser.DefaultOptions())
	var found, infoDiag bool
	for _, b := range blocks {
		if b.Type == ast.KA {
			found = true
			require.False(t, b.Parsed)
			gen, ok := b.Data.(ast.Generic)
			require.True(t, ok)
			require.Equal(t, ast.KA, gen.BlockType)
			for _, d := range b.LocalDiagnostics {
				if d.Code == "GLOBAL_GENERIC_BLOCK" {
					infoDiag = true
				}
			}
		}
	}
	require.True(t, found)
	require.True(t, infoDiag)
}

func TestParseUnknownHeaderCodeIsSkippedAsNoise(t *testing.T) {
	toks := lexer.Lex([]byte("ZZ\n1 2 3\n"), lexer.Options{CollapseWhitespace: true})
	// "ZZ" is not a BlockHeader token at all (not in the closed set), so
	// it lexes as an Identifier and the parser skips leading non-header
	// noise, producing zero blocks rather than an error.
	blocks, _, err := parser.Parse(toks, parser.DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, blocks)
}
