package normalize

import (
	"fmt"
	"sort"

	"github.com/dstvimport/dstv/ast"
	"github.com/dstvimport/dstv/coord"
	"github.com/dstvimport/dstv/internal/geocache"
	"github.com/dstvimport/dstv/validate"
)

// Options controls normalizer behavior (spec §6).
type Options struct {
	CoordinateSystem           string // "right-handed" | "left-handed"
	Units                      string // "mm" | "inch"
	FeatureIDPrefix            string
	GeometryTolerance          float64
	EnableGeometryCache        bool
	DisableMarkingFaceOverride bool
	// TubeContourConvention resolves open question #3: "final-shape"
	// (default) treats AK on tubes as the shape after cutting and
	// infers the cut; "cut-to-make" treats AK as the cut itself, the
	// same convention already used for I-profiles.
	TubeContourConvention string
}

// DefaultOptions mirrors spec §6 and DESIGN.md's open-question defaults.
func DefaultOptions() Options {
	return Options{
		CoordinateSystem:      "right-handed",
		Units:                 "mm",
		FeatureIDPrefix:       "dstv",
		GeometryTolerance:     0.01,
		TubeContourConvention: "final-shape",
	}
}

// steel grade table (spec §4.5.1).
var steelGrades = map[string]Material{
	"S235": {Grade: "S235", YieldStrength: 235, TensileStrength: 360, Density: 7850, Known: true},
	"S275": {Grade: "S275", YieldStrength: 275, TensileStrength: 430, Density: 7850, Known: true},
	"S355": {Grade: "S355", YieldStrength: 355, TensileStrength: 510, Density: 7850, Known: true},
}

var profileTypeByCode = map[ast.ProfileTypeCode]coord.ProfileType{
	ast.ProfileI: coord.IProfile,
	ast.ProfileU: coord.UProfile,
	ast.ProfileL: coord.LProfile,
	ast.ProfileT: coord.TProfile,
	ast.ProfileM: coord.TubeRect,
	ast.ProfileR: coord.TubeRound,
	ast.ProfileP: coord.Pipe,
	ast.ProfileB: coord.Plate,
	ast.ProfileC: coord.CProfile,
}

// Normalizer holds the pipeline-scoped state for stage C5: an optional
// geometry cache and the tube-end-cut tracker (spec §4.5.3, §5). Both
// are owned by value here rather than package-level, satisfying spec
// §5's requirement that concurrent pipelines not share mutable state
// without either scoping or locking it.
type Normalizer struct {
	Options Options
	cache   *geocache.Cache[coord.Position]
	tracker *tubeEndCutTracker
}

// New returns a Normalizer. If opt.EnableGeometryCache is set, an LRU
// backs coordinate conversions (DESIGN.md).
func New(opt Options) *Normalizer {
	n := &Normalizer{Options: opt, tracker: newTubeEndCutTracker()}
	if opt.EnableGeometryCache {
		n.cache = geocache.New[coord.Position](4096)
	}
	return n
}

// Diagnostic mirrors validate.Diagnostic's shape so the normalizer can
// surface its own observations (spec §7: diagnostics are data, not
// control flow) alongside the validator's.
type Diagnostic = validate.Diagnostic

// Result is the normalizer's output: the profile plus any diagnostics
// it generated itself (plate field remap, uncertain classifications).
type Result struct {
	Profile     *Profile
	Diagnostics []Diagnostic
}

// Normalize runs stage C5 end to end.
func (n *Normalizer) Normalize(vr validate.Result) (*Result, error) {
	var st *ast.STData
	var enPresent bool
	for _, b := range vr.ValidBlocks {
		if b.Type == ast.ST {
			if d, ok := b.Data.(ast.STData); ok {
				st = &d
			}
		}
		if b.Type == ast.EN {
			enPresent = true
		}
	}
	_ = enPresent
	if st == nil {
		return nil, fmt.Errorf("normalize: no ST block in validated input")
	}

	profile, diags := extractProfile(*st)
	counters := map[FeatureType]int{}
	idCounter := 0
	nextID := func(t FeatureType) string {
		idCounter++
		return fmt.Sprintf("%s_%s_%d", n.Options.FeatureIDPrefix, normalizedTag(t), idCounter)
	}

	ctxBase := coord.Context{
		ProfileType:                profile.Type,
		Dimensions:                 dimsFromProfile(*st),
		DisableMarkingFaceOverride: n.Options.DisableMarkingFaceOverride,
	}

	var features []Feature
	var akBlocks []ast.ParsedBlock
	for _, b := range vr.ValidBlocks {
		if b.Type == ast.AK {
			akBlocks = append(akBlocks, b)
		}
	}
	merged, classDiags := n.classifyAKBlocks(akBlocks, *st, profile.Type, ctxBase, nextID)
	features = append(features, merged...)
	diags = append(diags, classDiags...)

	for _, b := range vr.ValidBlocks {
		if b.Type == ast.AK {
			continue // handled above via classifyAKBlocks
		}
		fs, fd := n.normalizeBlock(b, *st, profile.Type, ctxBase, nextID)
		features = append(features, fs...)
		diags = append(diags, fd...)
	}

	for _, f := range features {
		counters[f.Type]++
	}

	features = dropNil(features)
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Metadata.ProcessingPriority < features[j].Metadata.ProcessingPriority
	})
	profile.Features = features

	return &Result{Profile: profile, Diagnostics: diags}, nil
}

func normalizedTag(t FeatureType) string {
	switch t {
	case Hole:
		return "hole"
	case Cut:
		return "cut"
	case EndCut:
		return "endcut"
	case Contour:
		return "contour"
	case Notch:
		return "notch"
	case CutWithNotches:
		return "cutnotch"
	case Marking:
		return "marking"
	case Punch:
		return "punch"
	default:
		return "feature"
	}
}

func dropNil(in []Feature) []Feature {
	out := in[:0]
	for _, f := range in {
		if f.ID != "" {
			out = append(out, f)
		}
	}
	return out
}

// extractProfile implements spec §4.5.1: profile-type resolution,
// dimension population, plate field remap, and steel-grade lookup.
func extractProfile(st ast.STData) (*Profile, []Diagnostic) {
	var diags []Diagnostic

	pt, ok := profileTypeByCode[st.ProfileTypeCode]
	if !ok {
		pt = guessProfileTypeFromName(st.ProfileName)
		diags = append(diags, Diagnostic{Severity: ast.Warning, Code: "PROF_TYPE_FALLBACK",
			Message: "profile type resolved by name pattern, not type code", BlockRef: -1})
	}

	length, thickness := st.Length, st.RootRadius
	if pt == coord.Plate || pt == coord.FlatBar {
		// spec §4.5.1, §9 open question 2: DSTV "height" carries the
		// plate length and the root-radius slot carries thickness.
		length = st.Height
		thickness = st.RootRadius
		diags = append(diags, Diagnostic{Severity: ast.Info, Code: "PROF_PLATE_REMAP",
			Message: "plate ST fields remapped: height->length, rootRadius slot->thickness", BlockRef: -1})
	}

	cross := map[string]float64{}
	switch pt {
	case coord.TubeRect:
		cross["height"] = st.Height
		cross["width"] = st.Width
		cross["wallThickness"] = st.FlangeThickness
		cross["wallThickness2"] = st.WallThickness2
		cross["rootRadius"] = st.RootRadius
	case coord.TubeRound, coord.Pipe:
		cross["diameter"] = st.Height
		cross["wallThickness"] = st.FlangeThickness
	case coord.Plate, coord.FlatBar:
		cross["width"] = st.Width
		cross["thickness"] = thickness
	default:
		cross["height"] = st.Height
		cross["width"] = st.Width
		cross["flangeThickness"] = st.FlangeThickness
		cross["webThickness"] = st.WebThickness
		cross["rootRadius"] = st.RootRadius
	}

	mat := Material{Grade: st.SteelGrade}
	if known, ok := steelGrades[st.SteelGrade]; ok {
		mat = known
	}

	prov := Provenance{
		OrderNumber: st.OrderNumber, DrawingNumber: st.DrawingNumber,
		PhaseNumber: st.PhaseNumber, PieceNumber: st.PieceNumber,
		ProfileName: st.ProfileName, Quantity: st.Quantity,
		OriginalFormat: "DSTV",
	}
	display := st.PieceNumber
	if display == "" {
		display = st.ProfileName
	}

	return &Profile{
		ID:          profileID(prov),
		DisplayName: display,
		Type:        pt,
		Material:    mat,
		Dimensions:  ProfileDimensions{Length: length, CrossSection: cross},
		Provenance:  prov,
	}, diags
}

func guessProfileTypeFromName(name string) coord.ProfileType {
	switch {
	case hasAnyPrefix(name, "IPE", "HEA", "HEB", "HEM", "UB", "UC"):
		return coord.IProfile
	case hasAnyPrefix(name, "UPN", "UPE", "U"):
		return coord.UProfile
	case hasAnyPrefix(name, "L"):
		return coord.LProfile
	case hasAnyPrefix(name, "HSS", "RHS", "SHS"):
		return coord.TubeRect
	case hasAnyPrefix(name, "CHS"):
		return coord.TubeRound
	case hasAnyPrefix(name, "PL"):
		return coord.Plate
	default:
		return coord.IProfile
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

func dimsFromProfile(st ast.STData) coord.Dimensions {
	return coord.Dimensions{
		Length: st.Length, Height: st.Height, Width: st.Width,
		FlangeThickness: st.FlangeThickness, WebThickness: st.WebThickness,
	}
}
