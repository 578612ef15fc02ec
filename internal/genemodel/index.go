package genemodel

import "sort"

// featureIndex provides O(log n + k) stabbing queries over one
// chromosome/strand's features using a sorted-slice approach.
// Features are loaded once and never modified after build.
type featureIndex struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

type interval struct {
	start   int64
	end     int64
	feature *Feature
}

// buildFeatureIndex creates an index from a slice of features.
func buildFeatureIndex(features []*Feature) *featureIndex {
	if len(features) == 0 {
		return &featureIndex{}
	}

	intervals := make([]interval, len(features))
	for i, f := range features {
		intervals[i] = interval{start: f.Start, end: f.End, feature: f}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[:i+1].
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &featureIndex{intervals: intervals, maxEnd: maxEnd}
}

// stab returns all features whose [start, end) span contains pos.
func (ix *featureIndex) stab(pos int64) []*Feature {
	if len(ix.intervals) == 0 {
		return nil
	}

	var result []*Feature

	// Binary search: find the first interval with start > pos.
	// All candidates lie in [0, hi).
	hi := sort.Search(len(ix.intervals), func(i int) bool {
		return ix.intervals[i].start > pos
	})

	for i := hi - 1; i >= 0; i-- {
		// Prune: maxEnd[i] bounds every end in intervals[:i+1], so when
		// it is <= pos no interval left to scan can contain pos.
		if ix.maxEnd[i] <= pos {
			break
		}
		if ix.intervals[i].end > pos {
			result = append(result, ix.intervals[i].feature)
		}
	}

	return result
}
