package parser

import (
	"strconv"
	"strings"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/token"
)

// faceLetters is the closed set of DSTV face-code prefixes shared
// across BO, SI, AK and IK (spec §4.3).
const faceLetters = "vhuo"

// splitFacePrefix recognizes a face letter fused to the front of a
// numeric lexeme (e.g. "v500.00u"), returning the face and the
// remaining numeric text. ok is false when lexeme carries no face
// prefix, in which case lexeme is returned unchanged.
func splitFacePrefix(lexeme string) (face ast.Face, rest string, ok bool) {
	if len(lexeme) < 2 {
		return ast.FaceUnset, lexeme, false
	}
	c := lexeme[0]
	if strings.IndexByte(faceLetters, c) < 0 {
		return ast.FaceUnset, lexeme, false
	}
	r := lexeme[1]
	if r != '+' && r != '-' && (r < '0' || r > '9') {
		return ast.FaceUnset, lexeme, false
	}
	return ast.Face(c), lexeme[1:], true
}

// parseFace reads a face code from a standalone token (a bare letter)
// or returns FaceUnset with ok=false so the caller can decide whether
// to default to Web with a warning (spec §4.3).
func parseFace(lexeme string) (ast.Face, bool) {
	if len(lexeme) != 1 {
		return ast.FaceUnset, false
	}
	c := lexeme[0]
	if strings.IndexByte(faceLetters, c) < 0 {
		return ast.FaceUnset, false
	}
	return ast.Face(c), true
}

// parseNumber strips a trailing unit suffix (the parser reads a token's
// Lexeme, which keeps the suffix the lexer drops from Value) and parses
// the remainder as float64.
func parseNumber(s string) (float64, error) {
	s = strings.TrimRight(s, "uUrR")
	return strconv.ParseFloat(s, 64)
}

// nextNumeric reads the next field as a number, transparently handling
// a fused face prefix. It advances *idx past the consumed token.
func nextNumeric(fields []token.Token, idx *int) (value float64, face ast.Face, err error) {
	if *idx >= len(fields) {
		return 0, ast.FaceUnset, errInsufficientFields
	}
	lex := fields[*idx].Lexeme
	if f, rest, ok := splitFacePrefix(lex); ok {
		v, perr := parseNumber(rest)
		*idx++
		return v, f, perr
	}
	v, perr := parseNumber(lex)
	*idx++
	return v, ast.FaceUnset, perr
}

var errInsufficientFields = errFields("insufficient fields")

type errFields string

func (e errFields) Error() string { return string(e) }
