package wptl

import "golang.org/x/sync/errgroup"

// maxCacheLookups bounds concurrent Get calls so a large page does not open
// hundreds of Redis round trips at once.
const maxCacheLookups = 16

// ParallelCacheLookup looks up every distinct segment hash concurrently.
// It returns the hits keyed by hash and the misses, one per hash, in the
// order the segments were given.
func ParallelCacheLookup(cache TranslationCache, segments []TextSegment, targetLang, model string) (map[string]string, []TextSegment) {
	hits := make(map[string]string)
	if cache == nil || len(segments) == 0 {
		return hits, segments
	}

	var unique []TextSegment
	seen := make(map[string]bool, len(segments))
	for _, seg := range segments {
		if !seen[seg.Hash] {
			seen[seg.Hash] = true
			unique = append(unique, seg)
		}
	}

	values := make([]string, len(unique))
	found := make([]bool, len(unique))

	var g errgroup.Group
	g.SetLimit(maxCacheLookups)
	for i, seg := range unique {
		g.Go(func() error {
			values[i], found[i] = cache.Get(CacheKey(seg.Hash, targetLang, model))
			return nil
		})
	}
	_ = g.Wait()

	var misses []TextSegment
	for i, seg := range unique {
		if found[i] {
			hits[seg.Hash] = values[i]
		} else {
			misses = append(misses, seg)
		}
	}
	return hits, misses
}
