package normalize

import (
	"sync"

	"github.com/dstvimport/dstv/coord"
	"github.com/dstvimport/dstv/internal/geocache"
)

// trackerEntry records which end-cuts have already been emitted for a
// given (profileType, profileLength) tube shape, so a sister AK block
// appearing on a second face doesn't duplicate the cut (spec §4.5.3,
// §5). It carries its own mutex because, per spec §5, a tracker shared
// across concurrent pipelines needs its write accesses serialized;
// here each Normalizer owns one tracker, so the mutex only matters if
// a caller deliberately shares one across pipeline instances.
type trackerEntry struct {
	mu    sync.Mutex
	start bool
	end   bool
}

// tubeEndCutTracker is pipeline-scoped (owned by a Normalizer value),
// not a package global, satisfying spec §5's "pipeline-local id"
// option for the one legitimate piece of shared mutable state in the
// core.
type tubeEndCutTracker struct {
	entries *geocache.Cache[*trackerEntry]
}

func newTubeEndCutTracker() *tubeEndCutTracker {
	return &tubeEndCutTracker{entries: geocache.New[*trackerEntry](256)}
}

func (t *tubeEndCutTracker) entry(pt coord.ProfileType, length float64) *trackerEntry {
	key := tubeTrackerKey(pt, length)
	return t.entries.GetOrCompute(key, func() *trackerEntry { return &trackerEntry{} })
}

// claim reports whether position ("start" or "end") has already been
// emitted for this shape, marking it emitted as a side effect.
func (t *tubeEndCutTracker) claim(pt coord.ProfileType, length float64, position string) (alreadyClaimed bool) {
	e := t.entry(pt, length)
	e.mu.Lock()
	defer e.mu.Unlock()
	switch position {
	case "start":
		alreadyClaimed = e.start
		e.start = true
	case "end":
		alreadyClaimed = e.end
		e.end = true
	}
	return alreadyClaimed
}
