package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dstvimport/dstv/token"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		kind token.Kind
		want string
	}{
		{token.BlockHeader, "BlockHeader"},
		{token.Integer, "Integer"},
		{token.Float, "Float"},
		{token.String, "String"},
		{token.Identifier, "Identifier"},
		{token.Delimiter, "Delimiter"},
		{token.Newline, "Newline"},
		{token.Whitespace, "Whitespace"},
		{token.Comment, "Comment"},
		{token.Error, "Error"},
		{token.Eof, "Eof"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.kind.String())
	}
}

func TestTokenSignificant(t *testing.T) {
	insignificant := []token.Kind{token.Whitespace, token.Newline, token.Comment}
	for _, k := range insignificant {
		tok := token.Token{Kind: k}
		require.False(t, tok.Significant(), "%s should not be significant", k)
	}

	significant := []token.Kind{token.BlockHeader, token.Integer, token.Float, token.String, token.Identifier, token.Delimiter, token.Error, token.Eof}
	for _, k := range significant {
		tok := token.Token{Kind: k}
		require.True(t, tok.Significant(), "%s should be significant", k)
	}
}

func TestTokenString(t *testing.T) {
	tok := token.Token{Kind: token.BlockHeader, Lexeme: "ST", Line: 1, Column: 1}
	require.Equal(t, `BlockHeader("ST")@1:1`, tok.String())
}
