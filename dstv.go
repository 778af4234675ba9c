// Package dstv wires pipeline stages C1 through C5 into a single
// Import entry point, the way github.com/pascaldekloe/part5's part5.go
// is the root package binding info and session together.
package dstv

import (
	"fmt"
	"os"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/internal/config"
	"github.com/dstvimport/dstv/lexer"
	"github.com/dstvimport/dstv/normalize"
	"github.com/dstvimport/dstv/parser"
	"github.com/dstvimport/dstv/pipeline"
	"github.com/dstvimport/dstv/token"
	"github.com/dstvimport/dstv/validate"

	"github.com/charmbracelet/log"
)

// Config re-exports internal/config.Config so callers of this package
// never need to import the internal package directly.
type Config = config.Config

// DefaultConfig returns Config with every documented default applied.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads Config from a TOML file.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Result is the outcome of a full Import: the normalized profile, the
// diagnostics accumulated across every stage, and the validator's
// conformity score.
type Result struct {
	Profile         *normalize.Profile
	Diagnostics     []ast.Diagnostic
	ConformityScore float64
	RunID           string
}

// Import runs the full bytes-to-profile pipeline over data using cfg.
// It returns an error only for a hard pipeline failure (input larger
// than cfg.MaxFileSize, missing ST, unparseable bytes, a mandatory-block
// violation of Error severity or above in strict mode, a stage timeout
// or cancellation); recoverable
// issues are reported through Result.Diagnostics and
// Result.ConformityScore instead.
func Import(data []byte, cfg Config) (*Result, error) {
	if int64(len(data)) > cfg.MaxFileSize {
		return nil, fmt.Errorf("dstv: input of %d bytes exceeds maxFileSize %d", len(data), cfg.MaxFileSize)
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.StageTimeout = cfg.StageTimeout
	pcfg.MaxRetries = cfg.MaxRetries
	pcfg.AbortOnError = cfg.AbortOnError
	p := pipeline.New("dstv-import", pcfg)

	var logger *log.Logger
	if cfg.EnableDebugLogs {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
		_ = p.Use(pipeline.NewDebugMiddleware())
	}

	_ = p.AddStage(pipeline.NewStageFunc("lex", func(_ *pipeline.Context, input any) (any, error) {
		raw, ok := input.([]byte)
		if !ok {
			return nil, fmt.Errorf("dstv: lex stage expects []byte input")
		}
		return lexer.Lex(raw, lexer.Options{CollapseWhitespace: true}), nil
	}))

	_ = p.AddStage(pipeline.NewStageFunc("parse", func(_ *pipeline.Context, input any) (any, error) {
		toks, ok := input.([]token.Token)
		if !ok {
			return nil, fmt.Errorf("dstv: parse stage expects []token.Token input")
		}
		blocks, diags, err := parser.Parse(toks, parser.Options{
			StrictMode:       cfg.StrictMode,
			SupportAllBlocks: cfg.SupportAllBlocks,
		})
		if err != nil {
			return nil, err
		}
		return parseOutput{blocks: blocks, diags: diags}, nil
	}))

	_ = p.AddStage(pipeline.NewStageFunc("validate", func(_ *pipeline.Context, input any) (any, error) {
		po, ok := input.(parseOutput)
		if !ok {
			return nil, fmt.Errorf("dstv: validate stage expects parser output")
		}
		vr := validate.Validate(po.blocks, validate.Options{
			StrictMode:             cfg.StrictMode,
			ValidateContourClosure: cfg.ValidateContourClosure,
			GeometryTolerance:      cfg.GeometryTolerance,
		})
		if cfg.StrictMode {
			for _, d := range vr.Diagnostics {
				if d.BlockRef == -1 && d.Severity >= ast.Error {
					return nil, fmt.Errorf("dstv: strict mode: %s: %s", d.Code, d.Message)
				}
			}
		}
		vr.Diagnostics = append(diagnosticsFromAST(po.diags), vr.Diagnostics...)
		return vr, nil
	}))

	_ = p.AddStage(pipeline.NewStageFunc("normalize", func(_ *pipeline.Context, input any) (any, error) {
		vr, ok := input.(validate.Result)
		if !ok {
			return nil, fmt.Errorf("dstv: normalize stage expects validator output")
		}
		n := normalize.New(normalize.Options{
			CoordinateSystem:           cfg.CoordinateSystem,
			Units:                      cfg.Units,
			FeatureIDPrefix:            cfg.FeatureIDPrefix,
			GeometryTolerance:          cfg.GeometryTolerance,
			EnableGeometryCache:        cfg.EnableGeometryCache,
			DisableMarkingFaceOverride: cfg.DisableMarkingFaceOverride,
			TubeContourConvention:      cfg.TubeContourConvention,
		})
		nr, err := n.Normalize(vr)
		if err != nil {
			return nil, err
		}
		return finalOutput{profile: nr.Profile, diags: append(vr.Diagnostics, nr.Diagnostics...), score: vr.ConformityScore}, nil
	}))

	ctx := pipeline.NewContext(logger)
	out, err := p.Execute(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("dstv: %w", err)
	}

	fo := out.(finalOutput)
	return &Result{
		Profile:         fo.profile,
		Diagnostics:     diagnosticsFromValidate(fo.diags),
		ConformityScore: fo.score,
		RunID:           ctx.RunID,
	}, nil
}

type parseOutput struct {
	blocks []ast.ParsedBlock
	diags  []ast.Diagnostic
}

type finalOutput struct {
	profile *normalize.Profile
	diags   []validate.Diagnostic
	score   float64
}

func diagnosticsFromAST(in []ast.Diagnostic) []validate.Diagnostic {
	out := make([]validate.Diagnostic, len(in))
	for i, d := range in {
		out[i] = validate.Diagnostic{Severity: d.Severity, Code: d.Code, Message: d.Message, BlockRef: -1}
	}
	return out
}

func diagnosticsFromValidate(in []validate.Diagnostic) []ast.Diagnostic {
	out := make([]ast.Diagnostic, len(in))
	for i, d := range in {
		out[i] = ast.Diagnostic{Severity: d.Severity, Code: d.Code, Message: d.Message}
	}
	return out
}
