package wptl

// DiffResult is the segment-level difference between two versions of a page.
type DiffResult struct {
	Added     []TextSegment     // Text only present in the new version
	Removed   []TextSegment     // Text only present in the old version
	Unchanged []TextSegment     // Text present in both; a re-run serves it from cache
	Modified  []ModifiedSegment // Same location, different text
}

// ModifiedSegment pairs the old and new text found at the same path.
type ModifiedSegment struct {
	Old TextSegment
	New TextSegment
}

// DiffStats contains summary counts for a diff.
type DiffStats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
}

// Stats returns summary counts for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the segments a re-translation would send:
// added segments and the new side of modified ones.
func (d *DiffResult) NeedsTranslation() []TextSegment {
	out := make([]TextSegment, 0, len(d.Added)+len(d.Modified))
	out = append(out, d.Added...)
	for _, m := range d.Modified {
		out = append(out, m.New)
	}
	return out
}

// DiffSegments compares two extractions by text hash. A removed and an added
// segment sharing the same path are reported as one modification. Results
// keep extraction order and hold each distinct text once.
func DiffSegments(oldSegs, newSegs []TextSegment) *DiffResult {
	result := &DiffResult{}

	oldHashes := make(map[string]bool, len(oldSegs))
	for _, seg := range oldSegs {
		oldHashes[seg.Hash] = true
	}
	newHashes := make(map[string]bool, len(newSegs))
	for _, seg := range newSegs {
		newHashes[seg.Hash] = true
	}

	seen := make(map[string]bool)
	var removed []TextSegment
	for _, seg := range oldSegs {
		if seen[seg.Hash] {
			continue
		}
		seen[seg.Hash] = true
		if newHashes[seg.Hash] {
			result.Unchanged = append(result.Unchanged, seg)
		} else {
			removed = append(removed, seg)
		}
	}

	seen = make(map[string]bool)
	var added []TextSegment
	for _, seg := range newSegs {
		if seen[seg.Hash] || oldHashes[seg.Hash] {
			continue
		}
		seen[seg.Hash] = true
		added = append(added, seg)
	}

	// Pair by path, first come first served
	matched := make(map[int]bool)
	for _, r := range removed {
		paired := false
		if r.Path != "" {
			for ai, a := range added {
				if matched[ai] || a.Path != r.Path {
					continue
				}
				result.Modified = append(result.Modified, ModifiedSegment{Old: r, New: a})
				matched[ai] = true
				paired = true
				break
			}
		}
		if !paired {
			result.Removed = append(result.Removed, r)
		}
	}
	for ai, a := range added {
		if !matched[ai] {
			result.Added = append(result.Added, a)
		}
	}

	return result
}
