// Package token defines the lexical tokens produced from a DSTV byte
// stream.
package token

import "fmt"

// Kind classifies a Token.
type Kind uint8

const (
	_           Kind = iota // 0: not used
	BlockHeader             // two uppercase letters in columns 1-2, e.g. "ST", "BO"
	Integer                 // signed whole number, unit suffix stripped
	Float                   // signed fixed-point number, unit suffix stripped
	String                  // free-form text, e.g. marking text
	Identifier              // alphanumeric run matching a profile-code shape
	Delimiter               // a tab
	Newline                 // LF or CRLF
	Whitespace              // a run of spaces, collapsed to one token
	Comment                 // "**" or "#" to end of line
	Error                   // a byte that matched none of the above
	Eof                     // end of input, always the last token
)

// String returns the label used in diagnostics and tests.
func (k Kind) String() string { return kindLabels[k] }

var kindLabels = [...]string{
	"notused<0>",
	"BlockHeader",
	"Integer",
	"Float",
	"String",
	"Identifier",
	"Delimiter",
	"Newline",
	"Whitespace",
	"Comment",
	"Error",
	"Eof",
}

// Token is a single lexical unit with its source position.
type Token struct {
	Kind   Kind
	Lexeme string // original text, as it appeared in the source
	Value  string // normalized text (a number's unit suffix is stripped)
	Line   int    // 1-based
	Column int    // 1-based, byte offset within the line
	Length int    // byte length of Lexeme
}

// Significant reports whether the token carries parser-relevant content.
// Whitespace, Newline and Comment tokens are dropped before block
// dispatch (spec §4.3).
func (t Token) Significant() bool {
	switch t.Kind {
	case Whitespace, Newline, Comment:
		return false
	default:
		return true
	}
}

// String renders a Token for diagnostics and test failure messages.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Line, t.Column)
}
