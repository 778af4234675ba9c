// Package parser implements pipeline stage C3: tokens → ordered
// ast.ParsedBlock list. It iterates the significant tokens, buffers each
// block header's fields up to the next header, and dispatches to a
// registered per-block-type parse function (spec §4.3).
package parser

import (
	"fmt"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/token"
)

// Options controls parser behavior (the subset of spec §6's
// configuration options relevant to this stage).
type Options struct {
	StrictMode       bool
	SupportAllBlocks bool
}

// DefaultOptions mirrors spec §6's defaults.
func DefaultOptions() Options {
	return Options{StrictMode: false, SupportAllBlocks: true}
}

// basicBlocks is the restricted set accepted when SupportAllBlocks is
// false (spec §6).
var basicBlocks = map[ast.BlockType]bool{
	ast.ST: true, ast.EN: true, ast.BO: true, ast.AK: true,
	ast.IK: true, ast.SI: true, ast.SC: true,
}

// blockParser parses one block's buffered raw field tokens into a
// BlockData. It returns the parsed data, whether parsing was possible
// at all ("parsed"), and any diagnostics local to the block.
type blockParser func(fields []token.Token) (data ast.BlockData, parsed bool, diags []ast.Diagnostic)

// registry maps a block-type code to its parser. Populated in init so
// every entry point into the package sees the full table.
var registry = map[ast.BlockType]blockParser{}

func register(t ast.BlockType, p blockParser) { registry[t] = p }

// Error wraps a hard parser failure (spec §7: Critical errors on
// unparseable bytes are parser invariant violations, not diagnostics).
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("parser: line %d: %s", e.Line, e.Msg) }

// Parse groups tokens into blocks and dispatches each to its
// registered parser.
func Parse(tokens []token.Token, opt Options) ([]ast.ParsedBlock, []ast.Diagnostic, error) {
	var blocks []ast.ParsedBlock
	var diags []ast.Diagnostic

	i := 0
	// skip any leading non-header noise
	for i < len(tokens) && tokens[i].Kind != token.BlockHeader && tokens[i].Kind != token.Eof {
		i++
	}

	for i < len(tokens) && tokens[i].Kind != token.Eof {
		header := tokens[i]
		bt, ok := ast.BlockTypeFromCode(header.Lexeme)
		if !ok {
			return nil, nil, &Error{Line: header.Line, Msg: fmt.Sprintf("unrecognized block header %q", header.Lexeme)}
		}
		startIdx := i
		i++

		var fields []token.Token
		for i < len(tokens) && tokens[i].Kind != token.BlockHeader && tokens[i].Kind != token.Eof {
			if tokens[i].Significant() {
				fields = append(fields, tokens[i])
			}
			i++
		}
		endIdx := i - 1

		if opt.SupportAllBlocks == false && !basicBlocks[bt] {
			d := ast.Diagnostic{Severity: ast.Warning, Code: "GLOBAL_UNSUPPORTED_BLOCK",
				Message: fmt.Sprintf("block type %s is not in the basic block set and supportAllBlocks is false", bt)}
			if opt.StrictMode {
				return nil, nil, &Error{Line: header.Line, Msg: d.Message}
			}
			diags = append(diags, d)
			continue
		}

		p, known := registry[bt]
		var data ast.BlockData
		var parsed bool
		var localDiags []ast.Diagnostic
		if known {
			data, parsed, localDiags = p(fields)
		} else {
			raw := make([]string, len(fields))
			for j, f := range fields {
				raw[j] = f.Lexeme
			}
			data = ast.Generic{BlockType: bt, RawFields: raw}
			parsed = false
			localDiags = []ast.Diagnostic{{Severity: ast.Info, Code: "GLOBAL_GENERIC_BLOCK",
				Message: fmt.Sprintf("block type %s has no dedicated parser; stored verbatim", bt)}}
		}

		raw := make([]string, len(fields))
		for j, f := range fields {
			raw[j] = f.Lexeme
		}
		blocks = append(blocks, ast.ParsedBlock{
			Type:             bt,
			Data:             data,
			RawFields:        raw,
			Span:             ast.Span{StartTokenIdx: startIdx, EndTokenIdx: endIdx, StartLine: header.Line},
			LocalDiagnostics: localDiags,
			Parsed:           parsed,
		})
		// localDiags travels with the block itself (ParsedBlock.LocalDiagnostics)
		// and is re-emitted with a BlockRef by validate.perBlockPass; folding it
		// into the returned diags here too would list every per-block diagnostic
		// twice in the final result.
	}

	return blocks, diags, nil
}
