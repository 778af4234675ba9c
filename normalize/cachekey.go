package normalize

import (
	"fmt"

	"github.com/dstvimport/dstv/coord"
)

// positionCacheKey builds the memoization key documented in
// SPEC_FULL.md's geometry-cache section: profile type, dimensions,
// face, feature type, and the input coordinate.
func positionCacheKey(x, y, z float64, ctx coord.Context) string {
	return fmt.Sprintf("%d|%.3f,%.3f,%.3f,%.3f,%.3f|%c|%d|%.6f,%.6f,%.6f",
		ctx.ProfileType,
		ctx.Dimensions.Length, ctx.Dimensions.Height, ctx.Dimensions.Width,
		ctx.Dimensions.FlangeThickness, ctx.Dimensions.WebThickness,
		byte(ctx.Face), ctx.FeatureType, x, y, z)
}

// tubeTrackerKey implements spec §4.5.3/§9's "(profileType,
// profileLength)" tracker key.
func tubeTrackerKey(pt coord.ProfileType, length float64) string {
	return fmt.Sprintf("%d|%.3f", pt, length)
}
