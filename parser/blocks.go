package parser

import (
	"strconv"
	"strings"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/token"
)

func init() {
	register(ast.ST, parseST)
	register(ast.EN, parseEN)
	register(ast.BO, parseBO)
	register(ast.AK, parseContour)
	register(ast.IK, parseContour)
	register(ast.SI, parseSI)
	register(ast.SC, parseSC)
	register(ast.PU, parsePU)
	register(ast.KO, parseKO)
}

// oneLetterTypeCodes is the closed set a profile-name reassembly scan
// stops on (spec §4.3: "profileName may be split across tokens;
// reassemble until a valid one-letter type code is reached").
var oneLetterTypeCodes = map[string]ast.ProfileTypeCode{
	"I": ast.ProfileI, "U": ast.ProfileU, "L": ast.ProfileL, "T": ast.ProfileT,
	"M": ast.ProfileM, "R": ast.ProfileR, "P": ast.ProfileP, "B": ast.ProfileB,
	"C": ast.ProfileC,
}

func lexemes(fields []token.Token) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Lexeme
	}
	return out
}

func parseST(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	if len(fields) < 8 {
		return nil, false, []ast.Diagnostic{{Severity: ast.Critical, Code: "PROF_FIELDS",
			Message: "ST block has fewer than the minimum required fields"}}
	}
	d := ast.STData{
		OrderNumber:   fields[0].Lexeme,
		DrawingNumber: fields[1].Lexeme,
		PhaseNumber:   fields[2].Lexeme,
		PieceNumber:   fields[3].Lexeme,
		SteelGrade:    fields[4].Lexeme,
	}
	qty, err := strconv.Atoi(strings.TrimSpace(fields[5].Lexeme))
	if err != nil {
		diags = append(diags, ast.Diagnostic{Severity: ast.Error, Code: "PROF_QTY",
			Message: "quantity is not a valid integer: " + fields[5].Lexeme})
	}
	d.Quantity = qty

	idx := 6
	var nameParts []string
	typeFound := false
	for idx < len(fields) {
		lex := fields[idx].Lexeme
		if code, ok := oneLetterTypeCodes[lex]; ok {
			d.ProfileTypeCode = code
			idx++
			typeFound = true
			break
		}
		nameParts = append(nameParts, lex)
		idx++
	}
	d.ProfileName = strings.Join(nameParts, "")
	if !typeFound {
		diags = append(diags, ast.Diagnostic{Severity: ast.Warning, Code: "PROF_TYPE_CODE",
			Message: "no recognized one-letter profile type code found in ST block; falling back to name pattern matching"})
	}

	rest := fields[idx:]
	vals := make([]float64, 8)
	for i := 0; i < 8 && i < len(rest); i++ {
		v, err := parseNumber(rest[i].Lexeme)
		if err != nil {
			diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "DIM_NONNUMERIC",
				Message: "ST geometric field is not numeric: " + rest[i].Lexeme})
			continue
		}
		vals[i] = v
	}
	if len(rest) < 8 {
		diags = append(diags, ast.Diagnostic{Severity: ast.Error, Code: "DIM_MISSING",
			Message: "ST block is missing one or more geometric fields"})
	}

	d.Length, d.Height, d.Width = vals[0], vals[1], vals[2]
	d.FlangeThickness, d.WebThickness, d.RootRadius = vals[3], vals[4], vals[5]
	d.WeightPerMeter, d.SurfaceArea = vals[6], vals[7]
	if d.ProfileTypeCode == ast.ProfileM {
		d.WallThickness2 = vals[4]
	}

	return d, true, diags
}

func parseEN(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var d ast.ENData
	if len(fields) > 0 {
		if v, err := parseNumber(fields[0].Lexeme); err == nil {
			d.ProcessingTime = v
		}
	}
	if len(fields) > 1 {
		d.Checksum = fields[1].Lexeme
	}
	return d, true, nil
}

// holeFieldsMin is the minimum (x, y, diameter) a hole record needs.
const holeFieldsMin = 3

func parseBO(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	var holes []ast.Hole
	i := 0
	// optNumeric reads an optional trailing field and advances only when
	// it parses as a plain number, so the next hole's face letter, a fused
	// face-prefixed coordinate or a plane designator is left in place.
	optNumeric := func() (float64, error) {
		v, err := parseNumber(fields[i].Lexeme)
		if err == nil {
			i++
		}
		return v, err
	}
	for i < len(fields) {
		var h ast.Hole
		if f, ok := parseFace(fields[i].Lexeme); ok {
			h.Face = f
			i++
		}
		if len(fields)-i < holeFieldsMin {
			diags = append(diags, ast.Diagnostic{Severity: ast.Error, Code: "HOLE_FIELDS",
				Message: "hole record has fewer than the minimum required fields"})
			break
		}
		x, f1, err1 := nextNumeric(fields, &i)
		if h.Face == ast.FaceUnset {
			h.Face = f1
		}
		y, f2, err2 := nextNumeric(fields, &i)
		if h.Face == ast.FaceUnset {
			h.Face = f2
		}
		dia, _, err3 := nextNumeric(fields, &i)
		if err1 != nil || err2 != nil || err3 != nil {
			diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "HOLE_NONNUMERIC",
				Message: "hole coordinate or diameter is not numeric"})
			continue
		}
		h.X, h.Y, h.Diameter = x, y, dia

		// optional trailing fields: depth, angle, plane, tolerance
		if i < len(fields) {
			if v, err := optNumeric(); err == nil {
				h.Depth = v
			}
		}
		if i < len(fields) {
			if v, err := optNumeric(); err == nil {
				h.Angle = v
			}
		}
		if i < len(fields) && strings.HasPrefix(fields[i].Lexeme, "E") {
			h.Plane = fields[i].Lexeme
			i++
		}
		if i < len(fields) {
			if v, err := optNumeric(); err == nil {
				h.Tolerance = v
			}
		}
		holes = append(holes, h)
	}
	if len(holes) == 0 {
		return ast.BOData{}, false, append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "HOLE_NONE",
			Message: "BO block produced no valid hole records"})
	}
	return ast.BOData{Holes: holes}, true, diags
}

func parseContour(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	var points []ast.Point
	i := 0
	for i < len(fields) {
		var p ast.Point
		if f, ok := parseFace(fields[i].Lexeme); ok {
			p.Face = f
			i++
		}
		if len(fields)-i < 2 {
			break
		}
		x, fx, errX := nextNumeric(fields, &i)
		if p.Face == ast.FaceUnset {
			p.Face = fx
		}
		if errX != nil {
			diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "CONT_NONNUMERIC",
				Message: "contour X coordinate is not numeric"})
			break
		}
		y, fy, errY := nextNumeric(fields, &i)
		if p.Face == ast.FaceUnset {
			p.Face = fy
		}
		if errY != nil {
			diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "CONT_NONNUMERIC",
				Message: "contour Y coordinate is not numeric"})
			break
		}
		p.X, p.Y = x, y
		// an optional Z follows when the next field is numeric and
		// not the start of the next point's face-prefixed X.
		if i < len(fields) {
			if _, rest, fused := splitFacePrefix(fields[i].Lexeme); !fused {
				_ = rest
				if v, err := parseNumber(fields[i].Lexeme); err == nil {
					p.Z, p.HasZ = v, true
					i++
				}
			}
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		return ast.ContourData{}, false, append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "CONT_002",
			Message: "contour has fewer than 2 points"})
	}
	return ast.ContourData{Points: points, Closed: true}, true, diags
}

func parseSI(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	var d ast.SIData
	i := 0
	if len(fields) == 0 {
		return d, false, []ast.Diagnostic{{Severity: ast.Critical, Code: "MARK_FIELDS", Message: "SI block is empty"}}
	}
	if f, ok := parseFace(fields[i].Lexeme); ok {
		d.Face = f
		i++
	}
	if len(fields)-i < 4 {
		return d, false, []ast.Diagnostic{{Severity: ast.Critical, Code: "MARK_FIELDS",
			Message: "SI block has fewer than the minimum required fields"}}
	}
	var err error
	x, fx, ex := nextNumeric(fields, &i)
	if d.Face == ast.FaceUnset {
		d.Face = fx
	}
	y, _, ey := nextNumeric(fields, &i)
	z, _, ez := nextNumeric(fields, &i)
	h, _, eh := nextNumeric(fields, &i)
	if ex != nil || ey != nil || ez != nil || eh != nil {
		err = ex
		if err == nil {
			err = ey
		}
		diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "MARK_NONNUMERIC",
			Message: "SI numeric field is not numeric"})
	}
	d.X, d.Y, d.Z, d.TextHeight = x, y, z, h

	if i < len(fields) {
		text := fields[i].Lexeme
		// Heuristic reconstruction for a known prefix fused by the
		// whitespace-splitting fallback (open question #1): a
		// leading digit run immediately followed by letters, e.g.
		// "10rM1002", indicates the angle/text-height field bled into
		// the text token.
		if len(text) > 0 && text[0] >= '0' && text[0] <= '9' {
			for j := 0; j < len(text); j++ {
				if text[j] >= 'A' && text[j] <= 'Z' {
					d.TextUncertain = true
					text = text[j:]
					break
				}
			}
		}
		d.Text = text
		i++
	}
	if d.Text == "" {
		diags = append(diags, ast.Diagnostic{Severity: ast.Error, Code: "MARK_TEXT_EMPTY", Message: "SI text field is empty"})
	}
	if d.TextUncertain {
		diags = append(diags, ast.Diagnostic{Severity: ast.Info, Code: "MARK_TEXT_UNCERTAIN",
			Message: "SI text was heuristically reconstructed from a fused numeric prefix"})
	}
	return d, true, diags
}

func parseSC(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	var d ast.SCData
	if len(fields) < 4 {
		return d, false, []ast.Diagnostic{{Severity: ast.Critical, Code: "CUT_FIELDS",
			Message: "SC block has fewer than the minimum required fields"}}
	}
	i := 0
	var errs [4]error
	d.X, _, errs[0] = nextNumeric(fields, &i)
	d.Y, _, errs[1] = nextNumeric(fields, &i)
	d.Width, _, errs[2] = nextNumeric(fields, &i)
	d.Height, _, errs[3] = nextNumeric(fields, &i)
	for _, e := range errs {
		if e != nil {
			diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "CUT_NONNUMERIC",
				Message: "SC numeric field is not numeric"})
			break
		}
	}
	if i < len(fields) {
		if v, err := parseNumber(fields[i].Lexeme); err == nil {
			d.Angle = v
			i++
		}
	}
	if i < len(fields) {
		if v, err := parseNumber(fields[i].Lexeme); err == nil {
			d.Radius = v
			i++
		}
	}
	if i < len(fields) {
		d.Plane = fields[i].Lexeme
	}
	return d, true, diags
}

func parsePU(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	var diags []ast.Diagnostic
	var d ast.PUData
	if len(fields) < 2 {
		return d, false, []ast.Diagnostic{{Severity: ast.Critical, Code: "PUNCH_FIELDS",
			Message: "PU block has fewer than the minimum required fields"}}
	}
	i := 0
	var errX, errY error
	d.X, _, errX = nextNumeric(fields, &i)
	d.Y, _, errY = nextNumeric(fields, &i)
	if errX != nil || errY != nil {
		diags = append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "PUNCH_NONNUMERIC",
			Message: "PU coordinate is not numeric"})
	}
	if i < len(fields) {
		if v, err := parseNumber(fields[i].Lexeme); err == nil {
			d.Depth = v
			i++
		}
	}
	if i < len(fields) {
		if v, err := parseNumber(fields[i].Lexeme); err == nil {
			d.Diameter = v
			i++
		}
	}
	if i < len(fields) {
		d.Plane = fields[i].Lexeme
	}
	return d, true, diags
}

func parseKO(fields []token.Token) (ast.BlockData, bool, []ast.Diagnostic) {
	c, parsed, diags := parseContour(fields)
	var pts []ast.Point
	if cd, ok := c.(ast.ContourData); ok {
		pts = cd.Points
	}
	if len(pts) < 2 {
		return ast.KOData{}, false, append(diags, ast.Diagnostic{Severity: ast.Critical, Code: "MARK_CONT_FIELDS",
			Message: "KO block has fewer than 2 points"})
	}
	return ast.KOData{Points: pts}, parsed, diags
}
