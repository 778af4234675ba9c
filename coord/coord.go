// Package coord implements pipeline stage C6: the two pure conversions
// from DSTV local coordinates/face-codes to the neutral frame (spec
// §4.6). A neutral frame is right-handed, millimeters, origin at the
// piece-length midpoint, X along the piece, Y up, Z transverse.
package coord

import "github.com/dstvimport/dstv/ast"

// ProfileType is the closed set of normalized profile types (spec §3).
type ProfileType uint8

const (
	_ ProfileType = iota
	IProfile
	UProfile
	LProfile
	TProfile
	ZProfile
	CProfile
	TubeRect
	TubeRound
	Plate
	FlatBar
	Pipe
)

var profileTypeLabels = map[ProfileType]string{
	IProfile: "IProfile", UProfile: "UProfile", LProfile: "LProfile",
	TProfile: "TProfile", ZProfile: "ZProfile", CProfile: "CProfile",
	TubeRect: "TubeRect", TubeRound: "TubeRound", Plate: "Plate",
	FlatBar: "FlatBar", Pipe: "Pipe",
}

func (t ProfileType) String() string {
	if s, ok := profileTypeLabels[t]; ok {
		return s
	}
	return "Unknown"
}

// Face is the neutral face taxonomy (spec §3).
type Face uint8

const (
	FaceNone Face = iota
	Web
	TopFlange
	BottomFlange
	Front
	Back
	Top
	Bottom
)

func (f Face) String() string {
	switch f {
	case Web:
		return "Web"
	case TopFlange:
		return "TopFlange"
	case BottomFlange:
		return "BottomFlange"
	case Front:
		return "Front"
	case Back:
		return "Back"
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		return "None"
	}
}

// Dimensions is the subset of ST geometry needed for conversions.
type Dimensions struct {
	Length          float64
	Height          float64
	Width           float64
	FlangeThickness float64
	WebThickness    float64
}

// FeatureType names the normalized feature kind requesting a
// conversion; it disambiguates the BO-face vs. SI-marking-face
// override (spec §4.6, §9 open question 4).
type FeatureType uint8

const (
	FeatureUnspecified FeatureType = iota
	FeatureHole
	FeatureMarking
	FeatureContour
	FeatureOther
)

// Context parameterizes a single conversion call.
type Context struct {
	ProfileType ProfileType
	Dimensions  Dimensions
	Face        ast.Face
	FeatureType FeatureType

	// DisableMarkingFaceOverride opts out of the 'v'→TopFlange
	// visibility override for SI markings on I/U profiles (open
	// question 4).
	DisableMarkingFaceOverride bool
}

// Position is a converted coordinate in the neutral frame.
type Position struct {
	X, Y, Z float64
}

// faceTable implements spec §4.6's DSTV-code-to-neutral-face table.
func faceTable(code ast.Face, pt ProfileType, ft FeatureType, disableOverride bool) Face {
	switch pt {
	case TubeRect, TubeRound, Pipe:
		switch code {
		case ast.FaceV:
			return Front
		case ast.FaceU:
			return Bottom
		case ast.FaceO:
			return Top
		case ast.FaceH:
			return Back
		}
	case Plate, FlatBar:
		switch code {
		case ast.FaceV:
			return Top
		case ast.FaceU:
			return Bottom
		case ast.FaceO:
			return Top
		case ast.FaceH:
			return Bottom
		}
	case LProfile:
		return Web
	default: // IProfile, UProfile, TProfile, ZProfile, CProfile
		switch code {
		case ast.FaceV:
			if ft == FeatureMarking && !disableOverride {
				return TopFlange // visibility override, spec §9 open question 4
			}
			if ft == FeatureHole {
				return Web
			}
			return Web
		case ast.FaceU:
			return BottomFlange
		case ast.FaceO:
			return Web
		case ast.FaceH:
			return Web
		}
	}
	return FaceNone
}

// ConvertFace maps a DSTV face code to the neutral face taxonomy.
func ConvertFace(code ast.Face, ctx Context) Face {
	if code == ast.FaceUnset {
		return FaceNone
	}
	return faceTable(code, ctx.ProfileType, ctx.FeatureType, ctx.DisableMarkingFaceOverride)
}

// ConvertPosition converts a DSTV local (x, y, z) to the neutral frame
// (spec §4.6). The conversion formula depends on (profileType × face ×
// featureType):
//   - tubes and angle profiles pass through unchanged;
//   - plates and flat bars map DSTV y to Z and set Y=0; markings keep
//     X, other features shift X by -length/2;
//   - I-profiles (and U/T/Z/C) add flangeThickness/2 to Y and shift X
//     by -length/2 to recenter on the piece midpoint, except markings
//     on face v under the marking face override, which pass through.
func ConvertPosition(x, y, z float64, ctx Context) Position {
	switch ctx.ProfileType {
	case TubeRect, TubeRound, Pipe, LProfile:
		return Position{X: x, Y: y, Z: z}

	case Plate, FlatBar:
		if ctx.FeatureType == FeatureMarking {
			return Position{X: x, Y: 0, Z: y}
		}
		return Position{X: x - ctx.Dimensions.Length/2, Y: 0, Z: y}

	default: // IProfile, UProfile, TProfile, ZProfile, CProfile
		if ctx.FeatureType == FeatureMarking && ctx.Face == ast.FaceV && !ctx.DisableMarkingFaceOverride {
			// Marking face override preserves the DSTV X directly
			// (spec §4.6, §9 open question 4): no recentring.
			return Position{X: x, Y: y, Z: z}
		}
		yOff := ctx.Dimensions.FlangeThickness / 2
		return Position{X: x - ctx.Dimensions.Length/2, Y: y + yOff, Z: z}
	}
}
