package normalize

import (
	"math"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/coord"
)

type idFunc func(FeatureType) string

// normalizeBlock implements spec §4.5.2's per-block feature table for
// every block type except AK, which is handled separately by the
// contour classifier (classifier.go).
func (n *Normalizer) normalizeBlock(b ast.ParsedBlock, st ast.STData, pt coord.ProfileType, base coord.Context, nextID idFunc) ([]Feature, []Diagnostic) {
	var diags []Diagnostic
	switch data := b.Data.(type) {

	case ast.BOData:
		var out []Feature
		for _, h := range data.Holes {
			if h.Diameter <= 0 {
				continue // spec §8 boundary: HOLE_001 already raised by validate; feature dropped
			}
			ctx := base
			ctx.Face = h.Face
			ctx.FeatureType = coord.FeatureHole
			pos := n.convertPosition(h.X, h.Y, 0, ctx)
			out = append(out, Feature{
				ID:          nextID(Hole),
				Type:        Hole,
				Coordinates: pos,
				Face:        coord.ConvertFace(h.Face, ctx),
				HasFace:     true,
				Parameters:  HoleParams{Diameter: h.Diameter, Depth: h.Depth},
				Metadata: Metadata{
					OriginalBlockType:  ast.BO,
					OriginalDSTVCoords: [3]float64{h.X, h.Y, 0},
					WorkPlane:          h.Plane,
					ProcessingPriority: processingPriority(ast.BO),
					ApplyOnly:          true,
				},
			})
		}
		return out, diags

	case ast.ContourData:
		// only reached for IK; AK is filtered out before dispatch.
		ctx := base
		if len(data.Points) > 0 {
			ctx.Face = data.Points[0].Face
		}
		ctx.FeatureType = coord.FeatureContour
		cx, cy := centroid(data.Points)
		pos := n.convertPosition(cx, cy, 0, ctx)
		geo := boundsOf(data.Points)
		return []Feature{{
			ID:          nextID(Contour),
			Type:        Contour,
			Coordinates: pos,
			Face:        coord.ConvertFace(ctx.Face, ctx),
			HasFace:     true,
			Parameters:  ContourParams{Points: data.Points},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.IK,
				ProcessingPriority: processingPriority(ast.IK),
			},
		}}, diags

	case ast.SIData:
		ctx := base
		ctx.Face = data.Face
		ctx.FeatureType = coord.FeatureMarking
		var pos coord.Position
		if pt == coord.Plate || pt == coord.FlatBar {
			if data.Face == ast.FaceV || data.Face == ast.FaceU {
				// flange-face-equivalent marking on a plate: direct
				// pass-through, per spec §4.5.2.
				pos = coord.Position{X: data.X, Y: data.Y, Z: data.Z}
			} else {
				pos = coord.Position{X: data.X, Y: 0, Z: data.Y}
			}
		} else if data.Face == ast.FaceV || data.Face == ast.FaceU {
			// flange-face marking on a non-plate: direct pass-through
			// (spec §4.5.2 table).
			pos = coord.Position{X: data.X, Y: data.Y, Z: data.Z}
		} else {
			pos = n.convertPosition(data.X, data.Y, data.Z, ctx)
		}
		return []Feature{{
			ID:          nextID(Marking),
			Type:        Marking,
			Coordinates: pos,
			Face:        coord.ConvertFace(data.Face, ctx),
			HasFace:     true,
			Parameters: MarkingParams{
				Text: data.Text, TextHeight: data.TextHeight, AngleDeg: data.AnglDeg,
				WebThickness: st.WebThickness, FlangeThickness: st.FlangeThickness,
			},
			Metadata: Metadata{
				OriginalBlockType:  ast.SI,
				OriginalDSTVCoords: [3]float64{data.X, data.Y, data.Z},
				ProcessingPriority: processingPriority(ast.SI),
				ApplyOnly:          true,
			},
		}}, diags

	case ast.SCData:
		geo := Geometry{MinX: data.X, MinY: data.Y, MaxX: data.X + data.Width, MaxY: data.Y + data.Height,
			Area: data.Width * data.Height, Perimeter: 2 * (data.Width + data.Height)}
		return []Feature{{
			ID:          nextID(Cut),
			Type:        Cut,
			Coordinates: coord.Position{X: data.X, Y: data.Y, Z: 0},
			Parameters:  CutParams{CutType: "rectangular"},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.SC,
				OriginalDSTVCoords: [3]float64{data.X, data.Y, 0},
				WorkPlane:          data.Plane,
				ProcessingPriority: processingPriority(ast.SC),
			},
		}}, diags

	case ast.PUData:
		return []Feature{{
			ID:          nextID(Punch),
			Type:        Punch,
			Coordinates: coord.Position{X: data.X, Y: data.Y, Z: 0},
			Parameters:  PunchParams{Depth: data.Depth, Diameter: data.Diameter},
			Metadata: Metadata{
				OriginalBlockType:  ast.PU,
				OriginalDSTVCoords: [3]float64{data.X, data.Y, 0},
				WorkPlane:          data.Plane,
				ProcessingPriority: processingPriority(ast.PU),
			},
		}}, diags

	case ast.KOData:
		cx, cy := centroid(data.Points)
		return []Feature{{
			ID:          nextID(Marking),
			Type:        Marking,
			Coordinates: coord.Position{X: cx, Y: cy, Z: 0},
			Parameters:  ContourParams{Points: data.Points},
			Metadata: Metadata{
				OriginalBlockType:  ast.KO,
				ProcessingPriority: processingPriority(ast.KO),
			},
		}}, diags

	case ast.Generic:
		ft, applyOnly := genericFeatureType(data.BlockType)
		return []Feature{{
			ID:          nextID(ft),
			Type:        ft,
			Coordinates: coord.Position{},
			Parameters:  GenericParams{BlockType: data.BlockType, RawFields: data.RawFields},
			Metadata: Metadata{
				OriginalBlockType:  data.BlockType,
				ProcessingPriority: processingPriority(data.BlockType),
				ApplyOnly:          applyOnly,
			},
		}}, diags

	default:
		return nil, diags
	}
}

func genericFeatureType(bt ast.BlockType) (FeatureType, bool) {
	switch bt {
	case ast.TO:
		return Thread, false
	case ast.KA:
		return Bend, false
	case ast.PR:
		return Profile, true
	case ast.UE:
		return UnrestrictedContour, false
	case ast.BR:
		return Bevel, false
	case ast.VO:
		return Volume, false
	case ast.NU:
		return NumericControl, false
	case ast.FP:
		return FreeProgram, false
	case ast.LP:
		return LineProgram, false
	case ast.RT:
		return Rotation, false
	case ast.WA:
		return Washing, false
	case ast.GR:
		return Group, false
	default:
		return Variable, false
	}
}

func (n *Normalizer) convertPosition(x, y, z float64, ctx coord.Context) coord.Position {
	if n.cache == nil {
		return coord.ConvertPosition(x, y, z, ctx)
	}
	key := positionCacheKey(x, y, z, ctx)
	return n.cache.GetOrCompute(key, func() coord.Position {
		return coord.ConvertPosition(x, y, z, ctx)
	})
}

func centroid(pts []ast.Point) (float64, float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return sx / n, sy / n
}

func boundsOf(pts []ast.Point) Geometry {
	if len(pts) == 0 {
		return Geometry{}
	}
	g := Geometry{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		g.MinX = math.Min(g.MinX, p.X)
		g.MinY = math.Min(g.MinY, p.Y)
		g.MaxX = math.Max(g.MaxX, p.X)
		g.MaxY = math.Max(g.MaxY, p.Y)
	}
	g.Area = (g.MaxX - g.MinX) * (g.MaxY - g.MinY)
	g.Perimeter = 2 * ((g.MaxX - g.MinX) + (g.MaxY - g.MinY))
	return g
}
