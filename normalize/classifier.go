// The AK contour classifier (spec §4.5.3) is the most delicate logic
// in the normalizer: given a contour's point list, face, profile type
// and length, it decides which of seven outcomes the contour
// represents and emits zero or one feature (plus, for the
// CutWithNotches merge case, may absorb other AK blocks).
package normalize

import (
	"math"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/coord"
)

const extremityTolerance = 10.0  // mm, spec §4.5.3's "> 10 mm" / "< L-10 mm"
const baseShapeTolerance = 5.0   // mm, spec §4.5.3's ProfileBaseShape match
const diagonalThreshold = 10.0   // mm, spec §4.5.3's "|dx|>10 ∧ |dy|>10"
const endCutSearchWindow = 100.0 // mm, spec §4.5.3's "near X < 100"

type akClassification int

const (
	classTubeEndCutStart akClassification = iota
	classTubeEndCutEnd
	classAngleCut
	classStraightCut
	classProfileBaseShape
	classCutWithNotches
	classNotch
	classPlainContour
)

func isTube(pt coord.ProfileType) bool { return pt == coord.TubeRect || pt == coord.TubeRound }

func isWebFace(f ast.Face) bool { return f == ast.FaceV || f == ast.FaceUnset }

// xRange returns the min and max X across a point list.
func xRange(pts []ast.Point) (minX, maxX float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	minX, maxX = pts[0].X, pts[0].X
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
	}
	return minX, maxX
}

// diagonalSegment finds the first adjacent point pair whose |dx| and
// |dy| both exceed diagonalThreshold, restricted to points within
// window of the given X origin (spec §4.5.3's "near X < 100" / near
// the far end).
func diagonalSegment(pts []ast.Point, originX, window float64) (dx, dy float64, found bool) {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if math.Abs(a.X-originX) > window && math.Abs(b.X-originX) > window {
			continue
		}
		ddx, ddy := b.X-a.X, b.Y-a.Y
		if math.Abs(ddx) > diagonalThreshold && math.Abs(ddy) > diagonalThreshold {
			return ddx, ddy, true
		}
	}
	return 0, 0, false
}

// isRectangle reports whether pts (assumed closed) form an axis-
// aligned rectangle within tol, regardless of point count beyond the
// 4 corners (extra points on an edge are tolerated).
func isRectangle(pts []ast.Point, width, height, tol float64) bool {
	minX, maxX := xRange(pts)
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return math.Abs((maxX-minX)-width) <= tol && math.Abs((maxY-minY)-height) <= tol
}

// classifyAKBlocks implements spec §4.5.3 in full, including the
// multi-AK merge into a single CutWithNotches feature.
func (n *Normalizer) classifyAKBlocks(blocks []ast.ParsedBlock, st ast.STData, pt coord.ProfileType, base coord.Context, nextID idFunc) ([]Feature, []Diagnostic) {
	var diags []Diagnostic
	if len(blocks) == 0 {
		return nil, diags
	}

	type classified struct {
		block ast.ParsedBlock
		cd    ast.ContourData
		class akClassification
	}
	var all []classified
	for _, b := range blocks {
		cd, ok := b.Data.(ast.ContourData)
		if !ok {
			continue
		}
		all = append(all, classified{block: b, cd: cd, class: n.classifyOne(cd, st, pt)})
	}

	// Multi-AK merge (spec §4.5.3): when any block classified as
	// CutWithNotches or Notch and more than one AK is present, merge
	// into a single CutWithNotches carried by the block on the Web
	// face (or with the most points), and drop the rest.
	hasComplex := false
	for _, c := range all {
		if c.class == classCutWithNotches || c.class == classNotch {
			hasComplex = true
			break
		}
	}
	if hasComplex && len(all) > 1 {
		primary := all[0]
		for _, c := range all[1:] {
			if isWebFace(c.cd.Points[0].Face) && !isWebFace(primary.cd.Points[0].Face) {
				primary = c
			} else if len(c.cd.Points) > len(primary.cd.Points) {
				primary = c
			}
		}
		geo := boundsOf(primary.cd.Points)
		f := Feature{
			ID:          nextID(CutWithNotches),
			Type:        CutWithNotches,
			Coordinates: coord.Position{},
			Parameters:  CutWithNotchesParams{Points: primary.cd.Points},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "cut-with-notches-merged",
			},
		}
		diags = append(diags, Diagnostic{Severity: ast.Info, Code: "CONT_MERGED",
			Message: "multiple AK blocks merged into a single CutWithNotches feature", BlockRef: -1})
		return []Feature{f}, diags
	}

	var features []Feature
	for _, c := range all {
		f, d := n.emitForClass(c.class, c.cd, st, pt, nextID)
		diags = append(diags, d...)
		if f != nil {
			features = append(features, *f)
		}
	}
	return features, diags
}

// classifyOne runs the seven-way decision tree for a single contour.
func (n *Normalizer) classifyOne(cd ast.ContourData, st ast.STData, pt coord.ProfileType) akClassification {
	face := ast.FaceUnset
	if len(cd.Points) > 0 {
		face = cd.Points[0].Face
	}
	minX, maxX := xRange(cd.Points)
	L := st.Length

	// spec §9 open question 3: "cut-to-make" treats AK on a tube the
	// same way it is already treated on an I-profile (the contour *is*
	// the cut, not the final shape to inverse-analyze), so the tube-
	// specific end-cut/angle-cut/straight-cut heuristics below only
	// apply under the default "final-shape" convention.
	tubeConvention := n.Options.TubeContourConvention
	if tubeConvention == "" {
		tubeConvention = "final-shape"
	}

	if isTube(pt) && isWebFace(face) && tubeConvention == "final-shape" {
		firstSig, lastSig := minX > extremityTolerance, maxX < L-extremityTolerance
		if firstSig {
			if _, _, ok := diagonalSegment(cd.Points, 0, endCutSearchWindow); ok {
				return classTubeEndCutStart
			}
		}
		if lastSig {
			if _, _, ok := diagonalSegment(cd.Points, L, endCutSearchWindow); ok {
				return classTubeEndCutEnd
			}
		}
		if _, _, ok := diagonalSegment(cd.Points, minX, math.Max(L, endCutSearchWindow)); ok {
			return classAngleCut
		}
		if len(cd.Points) == 5 && isRectangle(cd.Points, maxX-minX, stubHeight(st, pt), 1.0) {
			return classStraightCut
		}
		return classPlainContour
	}

	if !isTube(pt) {
		if isRectangle(cd.Points, L, st.Width, baseShapeTolerance) && isWebOrBottom(face) {
			return classProfileBaseShape
		}
		full := minX <= extremityTolerance && maxX >= L-extremityTolerance
		if len(cd.Points) == 9 && full {
			return classCutWithNotches
		}
		if minX > extremityTolerance || maxX < L-extremityTolerance {
			return classNotch
		}
	}

	return classPlainContour
}

func isWebOrBottom(f ast.Face) bool {
	return f == ast.FaceV || f == ast.FaceUnset || f == ast.FaceU
}

func stubHeight(st ast.STData, pt coord.ProfileType) float64 {
	if pt == coord.TubeRect {
		return st.Width
	}
	return st.Height
}

func (n *Normalizer) emitForClass(class akClassification, cd ast.ContourData, st ast.STData, pt coord.ProfileType, nextID idFunc) (*Feature, []Diagnostic) {
	var diags []Diagnostic
	geo := boundsOf(cd.Points)

	switch class {
	case classTubeEndCutStart, classTubeEndCutEnd:
		position := "start"
		originX := 0.0
		if class == classTubeEndCutEnd {
			position = "end"
			originX = st.Length
		}
		if n.tracker.claim(pt, st.Length, position) {
			diags = append(diags, Diagnostic{Severity: ast.Info, Code: "CONT_DUPLICATE_ENDCUT",
				Message: "tube end-cut already emitted for this shape; duplicate AK skipped", BlockRef: -1})
			return nil, diags
		}
		minX, maxX := xRange(cd.Points)
		chamfer := minX
		if position == "end" {
			chamfer = st.Length - maxX
		}
		dx, dy, _ := diagonalSegment(cd.Points, originX, endCutSearchWindow)
		angle := math.Atan2(math.Abs(dx), math.Abs(dy)) * 180 / math.Pi
		x := 0.0
		if position == "end" {
			x = st.Length
		}
		return &Feature{
			ID:          nextID(EndCut),
			Type:        EndCut,
			Coordinates: coord.Position{X: x - st.Length/2, Y: 0, Z: 0},
			Parameters:  EndCutParams{ChamferLength: chamfer, AngleDeg: angle, Position: position},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "tube-end-cut",
			},
		}, diags

	case classAngleCut:
		return &Feature{
			ID:          nextID(Cut),
			Type:        Cut,
			Coordinates: coord.Position{},
			Parameters:  CutParams{CutType: "angle"},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "angle-cut",
			},
		}, diags

	case classStraightCut:
		return &Feature{
			ID:          nextID(Cut),
			Type:        Cut,
			Coordinates: coord.Position{},
			Parameters:  CutParams{CutType: "straight"},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "straight-cut",
			},
		}, diags

	case classProfileBaseShape:
		// spec §4.5.3 case 4: emit nothing, the profile extrusion
		// itself is implied by the contour matching the footprint.
		return nil, diags

	case classCutWithNotches:
		return &Feature{
			ID:          nextID(CutWithNotches),
			Type:        CutWithNotches,
			Coordinates: coord.Position{},
			Parameters:  CutWithNotchesParams{Points: cd.Points},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "cut-with-notches",
			},
		}, diags

	case classNotch:
		return &Feature{
			ID:          nextID(Notch),
			Type:        Notch,
			Coordinates: coord.Position{},
			Parameters:  NotchParams{Points: cd.Points},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "notch",
			},
		}, diags

	default: // classPlainContour
		return &Feature{
			ID:          nextID(Contour),
			Type:        Contour,
			Coordinates: coord.Position{},
			Parameters:  ContourParams{Points: cd.Points},
			Geometry:    &geo,
			Metadata: Metadata{
				OriginalBlockType:  ast.AK,
				ProcessingPriority: processingPriority(ast.AK),
				DetectedAs:         "plain-contour",
			},
		}, diags
	}
}
