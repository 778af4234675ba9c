// Package validate implements pipeline stage C4: ParsedBlock list →
// ValidationResult (validated blocks, diagnostics, conformity score).
package validate

import (
	"fmt"
	"math"

	"github.com/dstvimport/dstv/ast"
)

// Options controls validator behavior (spec §6).
type Options struct {
	StrictMode             bool
	ValidateContourClosure bool
	GeometryTolerance      float64
}

// DefaultOptions mirrors spec §6's defaults.
func DefaultOptions() Options {
	return Options{StrictMode: false, ValidateContourClosure: true, GeometryTolerance: 0.01}
}

// Diagnostic is a validator observation, optionally tied to a block by
// index into the input slice (spec §3's ValidationResult.diagnostics).
type Diagnostic struct {
	Severity ast.Severity
	Code     string
	Message  string
	BlockRef int // index into the validated input slice, -1 if global
	Line     int
}

// Result is the validator's output (spec §3).
type Result struct {
	ValidBlocks      []ast.ParsedBlock
	Diagnostics      []Diagnostic
	ConformityScore  float64
}

func blockDiag(idx, line int, sev ast.Severity, code, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: msg, BlockRef: idx, Line: line}
}

// Validate runs the three validation passes described in spec §4.4.
func Validate(blocks []ast.ParsedBlock, opt Options) Result {
	var diags []Diagnostic
	diags = append(diags, structuralPass(blocks, opt)...)

	scores := make([]float64, len(blocks))
	valid := make([]bool, len(blocks))
	for i, b := range blocks {
		s, bd, hasCritical := perBlockPass(i, b, opt)
		scores[i] = s
		valid[i] = !hasCritical
		diags = append(diags, bd...)
	}
	diags = append(diags, interBlockPass(blocks, opt)...)

	var result Result
	for i, b := range blocks {
		if valid[i] {
			result.ValidBlocks = append(result.ValidBlocks, b)
		}
	}
	result.Diagnostics = diags
	result.ConformityScore = average(scores)
	return result
}

func average(scores []float64) float64 {
	if len(scores) == 0 {
		return 1.0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return clamp01(sum / float64(len(scores)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// structuralPass checks ST/EN presence and position (spec §3 invariant 1).
func structuralPass(blocks []ast.ParsedBlock, opt Options) []Diagnostic {
	var diags []Diagnostic

	stCount, enCount := 0, 0
	stFirst, enLast := true, true
	for i, b := range blocks {
		switch b.Type {
		case ast.ST:
			stCount++
			if i != 0 {
				stFirst = false
			}
		case ast.EN:
			enCount++
			if i != len(blocks)-1 {
				enLast = false
			}
		}
	}

	if stCount == 0 {
		diags = append(diags, Diagnostic{Severity: ast.Critical, Code: "GLOBAL_ST_MISSING",
			Message: "no ST block found", BlockRef: -1})
	} else if stCount > 1 {
		diags = append(diags, Diagnostic{Severity: ast.Error, Code: "GLOBAL_ST_MULTIPLE",
			Message: "more than one ST block found", BlockRef: -1})
	} else if !stFirst {
		diags = append(diags, Diagnostic{Severity: ast.Error, Code: "GLOBAL_ST_ORDER",
			Message: "ST block is not first", BlockRef: -1})
	}

	if enCount == 0 {
		sev := ast.Warning
		if opt.StrictMode {
			sev = ast.Error
		}
		diags = append(diags, Diagnostic{Severity: sev, Code: "GLOBAL_EN_MISSING",
			Message: "no EN block found", BlockRef: -1})
	} else if enCount > 1 {
		diags = append(diags, Diagnostic{Severity: ast.Error, Code: "GLOBAL_EN_MULTIPLE",
			Message: "more than one EN block found", BlockRef: -1})
	} else if !enLast {
		sev := ast.Warning
		if opt.StrictMode {
			sev = ast.Error
		}
		diags = append(diags, Diagnostic{Severity: sev, Code: "GLOBAL_EN_ORDER",
			Message: "EN block is not last", BlockRef: -1})
	}

	return diags
}

// perBlockPass dispatches to a block-type-specific validator and
// returns its conformity score (spec §4.4 scoring formula).
func perBlockPass(idx int, b ast.ParsedBlock, opt Options) (score float64, diags []Diagnostic, hasCritical bool) {
	score = 1.0

	apply := func(d Diagnostic) {
		diags = append(diags, d)
		switch d.Severity {
		case ast.Critical:
			score = 0
			hasCritical = true
		case ast.Error:
			score -= 0.2
		case ast.Warning:
			score -= 0.05
		}
	}

	for _, ld := range b.LocalDiagnostics {
		apply(blockDiag(idx, b.Span.StartLine, ld.Severity, ld.Code, ld.Message))
	}

	switch data := b.Data.(type) {
	case ast.STData:
		if data.ProfileName == "" {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "PROF_NAME_EMPTY", "profile name is empty"))
		}
		if data.Quantity <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Error, "PROF_QTY_NONPOS", "quantity must be a positive integer"))
		}
		if data.Length <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Error, "DIM_LENGTH_NONPOS", "profile length must be > 0"))
		}

	case ast.BOData:
		for _, h := range data.Holes {
			if h.Diameter <= 0 {
				apply(blockDiag(idx, b.Span.StartLine, ast.Critical, "HOLE_001", "hole diameter must be > 0"))
				continue
			}
			if h.Diameter > 500 {
				apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "HOLE_DIAMETER_LARGE", "hole diameter exceeds 500 mm"))
			}
			if h.Angle < -90 || h.Angle > 90 {
				apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "HOLE_ANGLE_RANGE", "hole angle outside [-90, 90] degrees"))
			}
			if h.Plane != "" && !validPlane(h.Plane) {
				apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "HOLE_PLANE_FORMAT", "hole work plane does not match E[0-9]"))
			}
		}

	case ast.ContourData:
		if len(data.Points) < 3 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Critical, "CONT_002", "contour has fewer than 3 points"))
			break
		}
		if opt.ValidateContourClosure && data.Closed {
			if !isClosed(data.Points, opt.GeometryTolerance) {
				apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "CONT_NOT_CLOSED", "declared-closed contour does not close within tolerance"))
			}
		}
		area := signedArea(data.Points)
		expectOuter := b.Type == ast.AK
		isCCW := area > 0
		if expectOuter && !isCCW {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "CONT_ORIENTATION", "outer contour is not counter-clockwise"))
		}
		if !expectOuter && isCCW {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "CONT_ORIENTATION", "inner contour is not clockwise"))
		}

	case ast.SIData:
		if data.Text == "" {
			apply(blockDiag(idx, b.Span.StartLine, ast.Error, "MARK_TEXT_EMPTY", "marking text must not be empty"))
		}
		if data.TextHeight <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Error, "MARK_HEIGHT_NONPOS", "marking text height must be > 0"))
		}
		if data.AnglDeg < 0 || data.AnglDeg >= 360 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "MARK_ANGLE_RANGE", "marking angle outside [0, 360) degrees"))
		}

	case ast.SCData:
		if data.Width <= 0 || data.Height <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Error, "CUT_DIMS_NONPOS", "cut width and height must be > 0"))
		}

	case ast.PUData:
		if data.Depth <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "CUT_DEPTH_NONPOS", "punch depth should be > 0"))
		}
		if data.Diameter <= 0 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Warning, "CUT_DIAMETER_NONPOS", "punch diameter should be > 0"))
		}

	case ast.KOData:
		if len(data.Points) < 2 {
			apply(blockDiag(idx, b.Span.StartLine, ast.Critical, "MARK_CONT_FIELDS", "contour marking has fewer than 2 points"))
		}
	}

	if score < 0 {
		score = 0
	}
	return score, diags, hasCritical
}

func validPlane(s string) bool {
	return len(s) == 2 && s[0] == 'E' && s[1] >= '0' && s[1] <= '9'
}

func isClosed(pts []ast.Point, tol float64) bool {
	if len(pts) < 2 {
		return false
	}
	first, last := pts[0], pts[len(pts)-1]
	dx, dy := first.X-last.X, first.Y-last.Y
	return math.Hypot(dx, dy) <= tol
}

// signedArea is twice the polygon area via the shoelace formula; its
// sign gives the winding direction (positive = counter-clockwise).
func signedArea(pts []ast.Point) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// pointInPolygon is the standard even-odd ray-casting test.
func pointInPolygon(p ast.Point, poly []ast.Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// interBlockPass checks every IK's containment within some AK (spec
// §4.4 pass 3).
func interBlockPass(blocks []ast.ParsedBlock, opt Options) []Diagnostic {
	var outers [][]ast.Point
	for _, b := range blocks {
		if b.Type == ast.AK {
			if cd, ok := b.Data.(ast.ContourData); ok {
				outers = append(outers, cd.Points)
			}
		}
	}

	var diags []Diagnostic
	for i, b := range blocks {
		if b.Type != ast.IK {
			continue
		}
		cd, ok := b.Data.(ast.ContourData)
		if !ok {
			continue
		}
		contained := false
		for _, outer := range outers {
			allIn := true
			for _, p := range cd.Points {
				if !pointInPolygon(p, outer) {
					allIn = false
					break
				}
			}
			if allIn {
				contained = true
				break
			}
		}
		if !contained {
			// spec §4.4 pass 3: "strict mode: Warning recorded but
			// not raised" — non-containment is never a hard failure.
			diags = append(diags, blockDiag(i, b.Span.StartLine, ast.Warning, "CONT_NOT_CONTAINED",
				fmt.Sprintf("inner contour at line %d is not contained within any outer contour", b.Span.StartLine)))
		}
	}
	return diags
}
