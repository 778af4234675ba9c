// Package normalize implements pipeline stage C5: the validated block
// list becomes a single NormalizedProfile with an ordered feature list
// in a neutral coordinate system (spec §4.5). It is the largest and
// most delicate component in the pipeline, centered on the AK contour
// classifier (classifier.go).
package normalize

import (
	"fmt"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/coord"
)

// FeatureType is the closed set of normalized feature kinds (spec §3).
type FeatureType uint8

const (
	_ FeatureType = iota
	Hole
	Cut
	EndCut
	Contour
	Notch
	CutWithNotches
	Marking
	Punch
	WeldPrep
	Thread
	Bend
	Profile
	UnrestrictedContour
	Bevel
	Volume
	NumericControl
	FreeProgram
	LineProgram
	Rotation
	Washing
	Group
	Variable
)

var featureTypeLabels = map[FeatureType]string{
	Hole: "Hole", Cut: "Cut", EndCut: "EndCut", Contour: "Contour",
	Notch: "Notch", CutWithNotches: "CutWithNotches", Marking: "Marking",
	Punch: "Punch", WeldPrep: "WeldPrep", Thread: "Thread", Bend: "Bend",
	Profile: "Profile", UnrestrictedContour: "UnrestrictedContour",
	Bevel: "Bevel", Volume: "Volume", NumericControl: "NumericControl",
	FreeProgram: "FreeProgram", LineProgram: "LineProgram", Rotation: "Rotation",
	Washing: "Washing", Group: "Group", Variable: "Variable",
}

func (t FeatureType) String() string {
	if s, ok := featureTypeLabels[t]; ok {
		return s
	}
	return "Unknown"
}

// processingPriority implements spec §3 invariant 9. Lower sorts
// first; Profile(PR) sorts before everything.
func processingPriority(source ast.BlockType) int {
	switch source {
	case ast.PR:
		return 0
	case ast.AK:
		return 1
	case ast.IK:
		return 2
	case ast.SC:
		return 3
	case ast.BO:
		return 4
	case ast.SI:
		return 5
	case ast.PU:
		return 6
	case ast.KO:
		return 7
	default:
		return 8
	}
}

// Parameters is implemented by each feature type's type-specific
// parameter record (spec §9 tagged-variant discipline).
type Parameters interface {
	parameters()
}

type HoleParams struct {
	Diameter float64
	Depth    float64 // 0 means through-hole
}

func (HoleParams) parameters() {}

type CutParams struct {
	CutType string // "angle" | "straight" | "rectangular"
}

func (CutParams) parameters() {}

type EndCutParams struct {
	ChamferLength float64
	AngleDeg      float64
	Position      string // "start" | "end"
}

func (EndCutParams) parameters() {}

type ContourParams struct {
	Points []ast.Point
}

func (ContourParams) parameters() {}

type NotchParams struct {
	Points []ast.Point
}

func (NotchParams) parameters() {}

type CutWithNotchesParams struct {
	Points []ast.Point
}

func (CutWithNotchesParams) parameters() {}

type MarkingParams struct {
	Text            string
	TextHeight      float64
	AngleDeg        float64
	WebThickness    float64
	FlangeThickness float64
}

func (MarkingParams) parameters() {}

type PunchParams struct {
	Depth    float64
	Diameter float64
}

func (PunchParams) parameters() {}

type GenericParams struct {
	BlockType ast.BlockType
	RawFields []string
}

func (GenericParams) parameters() {}

// Geometry carries optional derived bounds for a feature.
type Geometry struct {
	MinX, MinY, MaxX, MaxY float64
	Area, Perimeter        float64
}

// Metadata carries the non-geometric bookkeeping spec §3 requires on
// every feature.
type Metadata struct {
	OriginalBlockType  ast.BlockType
	OriginalDSTVCoords [3]float64
	WorkPlane          string
	ProcessingPriority int
	ApplyOnly          bool
	DetectedAs         string // e.g. "tube-end-cut"
}

// Feature is a single NormalizedFeature (spec §3).
type Feature struct {
	ID          string
	Type        FeatureType
	Coordinates coord.Position
	Face        coord.Face
	HasFace     bool
	Parameters  Parameters
	Metadata    Metadata
	Geometry    *Geometry
}

// Material holds steel-grade properties, looked up from a fixed table
// (spec §4.5.1); fields are zero when the grade is unrecognized.
type Material struct {
	Grade           string
	YieldStrength   float64
	TensileStrength float64
	Density         float64
	Known           bool
}

// ProfileDimensions is the profile's length plus a type-specific
// cross-section map (spec §3).
type ProfileDimensions struct {
	Length       float64
	CrossSection map[string]float64
}

// Provenance is the profile's originating-order bookkeeping (spec §3).
type Provenance struct {
	OrderNumber    string
	DrawingNumber  string
	PhaseNumber    string
	PieceNumber    string
	ProfileName    string
	Quantity       int
	OriginalFormat string
}

// Profile is the normalizer's output (spec §3's NormalizedProfile).
type Profile struct {
	ID          string
	DisplayName string
	Type        coord.ProfileType
	Material    Material
	Dimensions  ProfileDimensions
	Features    []Feature
	Provenance  Provenance
}

func profileID(p Provenance) string {
	return fmt.Sprintf("%s-%s", p.PieceNumber, p.OrderNumber)
}
