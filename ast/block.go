// Package ast defines the ParsedBlock tagged union produced by the
// block parser (pipeline stage C3) and consumed by the validator (C4)
// and the normalizer (C5).
package ast

// BlockType is the closed set of DSTV block-type tags (spec §3, §4.3).
type BlockType uint8

const (
	_ BlockType = iota // 0: not used
	ST
	EN
	BO
	AK
	IK
	SI
	SC
	PU
	KO
	TO
	UE
	PR
	KA
	BR
	VO
	NU
	FP
	LP
	RT
	EB
	VB
	GR
	WA
	FB
	BF
	KL
	KN
	RO
	IN
	E0
	E1
	E2
	E3
	E4
	E5
	E6
	E7
	E8
	E9
)

var blockTypeLabels = map[BlockType]string{
	ST: "ST", EN: "EN", BO: "BO", AK: "AK", IK: "IK", SI: "SI", SC: "SC",
	PU: "PU", KO: "KO", TO: "TO", UE: "UE", PR: "PR", KA: "KA", BR: "BR",
	VO: "VO", NU: "NU", FP: "FP", LP: "LP", RT: "RT", EB: "EB", VB: "VB",
	GR: "GR", WA: "WA", FB: "FB", BF: "BF", KL: "KL", KN: "KN", RO: "RO",
	IN: "IN", E0: "E0", E1: "E1", E2: "E2", E3: "E3", E4: "E4", E5: "E5",
	E6: "E6", E7: "E7", E8: "E8", E9: "E9",
}

// BlockTypeFromCode looks up the BlockType for a two-letter DSTV header
// code. ok is false for any code outside the closed set.
func BlockTypeFromCode(code string) (bt BlockType, ok bool) {
	for t, label := range blockTypeLabels {
		if label == code {
			return t, true
		}
	}
	return 0, false
}

// String returns the two-letter DSTV code.
func (t BlockType) String() string {
	if s, ok := blockTypeLabels[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Severity classifies a diagnostic raised while parsing or validating a
// single block (spec §4.4, §7).
type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Diagnostic is a single (severity, code, message) observation tied to
// the block that produced it.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
}

// Span locates a ParsedBlock's token range for diagnostics.
type Span struct {
	StartTokenIdx int
	EndTokenIdx   int
	StartLine     int
}

// BlockData is implemented by every per-block-type parsed record. It is
// a marker interface; the validator and the normalizer dispatch with a
// type switch on the concrete type, and a type neither switch lists is
// passed over without a diagnostic (spec §9 tagged-variant discipline).
type BlockData interface {
	blockData()
}

// ParsedBlock is one DSTV block as produced by the parser.
type ParsedBlock struct {
	Type             BlockType
	Data             BlockData
	RawFields        []string // ordered significant token lexemes used for this block
	Span             Span
	LocalDiagnostics []Diagnostic
	// Parsed is false for block types that fell back to the generic
	// record (spec §4.3's "unimplemented parsers" clause).
	Parsed bool
}

// Generic is the fallback record for block types whose field layout is
// accepted verbatim without type-specific decoding.
type Generic struct {
	BlockType BlockType
	RawFields []string
}

func (Generic) blockData() {}
