package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/coord"
)

func testContext(pt coord.ProfileType) coord.Context {
	return coord.Context{ProfileType: pt, Dimensions: coord.Dimensions{Length: 1000, FlangeThickness: 8.5}}
}

func TestNormalizeBlockBOThroughHoleKept(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.BO, Data: ast.BOData{Holes: []ast.Hole{{Face: ast.FaceV, X: 500, Y: 50, Diameter: 20, Depth: 0}}}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Hole, fs[0].Type)
	p := fs[0].Parameters.(HoleParams)
	require.Equal(t, 20.0, p.Diameter)
	require.Equal(t, 0.0, p.Depth)
	require.True(t, fs[0].Metadata.ApplyOnly)
}

func TestNormalizeBlockBODropsNonPositiveDiameter(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.BO, Data: ast.BOData{Holes: []ast.Hole{
		{Face: ast.FaceV, X: 100, Y: 50, Diameter: 0, Depth: 0},
		{Face: ast.FaceV, X: 200, Y: 50, Diameter: 15, Depth: 0},
	}}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, 15.0, fs[0].Parameters.(HoleParams).Diameter)
}

func TestNormalizeBlockSIMarkingFlangeFacePassesThrough(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.SI, Data: ast.SIData{Face: ast.FaceV, X: 2, Y: 2, TextHeight: 10, Text: "M1002"}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Marking, fs[0].Type)
	require.Equal(t, coord.Position{X: 2, Y: 2, Z: 0}, fs[0].Coordinates)
	require.Equal(t, coord.TopFlange, fs[0].Face)
	require.True(t, fs[0].Metadata.ApplyOnly)
	params := fs[0].Parameters.(MarkingParams)
	require.Equal(t, "M1002", params.Text)
}

func TestNormalizeBlockSCRectangularCut(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.SC, Data: ast.SCData{X: 10, Y: 20, Width: 30, Height: 40}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Cut, fs[0].Type)
	require.Equal(t, "rectangular", fs[0].Parameters.(CutParams).CutType)
	require.Equal(t, 30.0*40.0, fs[0].Geometry.Area)
}

func TestNormalizeBlockPUPunch(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.PU, Data: ast.PUData{X: 5, Y: 6, Depth: 1.5, Diameter: 8}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Punch, fs[0].Type)
	p := fs[0].Parameters.(PunchParams)
	require.Equal(t, 8.0, p.Diameter)
	require.Equal(t, 1.5, p.Depth)
}

func TestNormalizeBlockKOContourMarking(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.KO, Data: ast.KOData{Points: []ast.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Marking, fs[0].Type)
	require.Equal(t, 5.0, fs[0].Coordinates.X)
	require.Equal(t, 5.0, fs[0].Coordinates.Y)
}

func TestNormalizeBlockGenericFallback(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.KA, Data: ast.Generic{BlockType: ast.KA, RawFields: []string{"1", "2", "3"}}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Bend, fs[0].Type)
	gp := fs[0].Parameters.(GenericParams)
	require.Equal(t, ast.KA, gp.BlockType)
	require.Equal(t, []string{"1", "2", "3"}, gp.RawFields)
}

func TestNormalizeBlockIKContour(t *testing.T) {
	n := newTestNormalizer()
	st := ast.STData{Length: 1000}
	b := ast.ParsedBlock{Type: ast.IK, Data: ast.ContourData{Points: []ast.Point{
		{Face: ast.FaceV, X: 100, Y: 10}, {Face: ast.FaceV, X: 200, Y: 10}, {Face: ast.FaceV, X: 200, Y: 20},
	}}}
	fs, _ := n.normalizeBlock(b, st, coord.IProfile, testContext(coord.IProfile), idGen())
	require.Len(t, fs, 1)
	require.Equal(t, Contour, fs[0].Type)
	require.Equal(t, ast.IK, fs[0].Metadata.OriginalBlockType)
}
