package profile

import (
	"sort"

	"github.com/omics-tools/peakvar/internal/peak"
)

// peakIndex answers point containment queries over a peak set, one
// sorted slice per chromosome with a suffix max-end array to prune the
// scan.
type peakIndex struct {
	byChrom map[string]*peakList
}

type peakList struct {
	peaks  []*peak.AnnotatedPeak // sorted by Start
	maxEnd []int64               // maxEnd[i] = max End over peaks[i:]
}

func buildPeakIndex(peaks []*peak.AnnotatedPeak) *peakIndex {
	byChrom := make(map[string][]*peak.AnnotatedPeak)
	for _, p := range peaks {
		byChrom[p.Chrom] = append(byChrom[p.Chrom], p)
	}

	idx := &peakIndex{byChrom: make(map[string]*peakList, len(byChrom))}
	for chrom, list := range byChrom {
		sort.Slice(list, func(i, j int) bool {
			return list[i].Start < list[j].Start
		})

		maxEnd := make([]int64, len(list))
		max := int64(0)
		for i := len(list) - 1; i >= 0; i-- {
			if list[i].End > max {
				max = list[i].End
			}
			maxEnd[i] = max
		}

		idx.byChrom[chrom] = &peakList{peaks: list, maxEnd: maxEnd}
	}
	return idx
}

// containing returns the peaks whose half-open interval contains the
// 0-based position pos.
func (idx *peakIndex) containing(chrom string, pos int64) []*peak.AnnotatedPeak {
	list, ok := idx.byChrom[chrom]
	if !ok {
		return nil
	}

	var hits []*peak.AnnotatedPeak
	for i, p := range list.peaks {
		if p.Start > pos {
			break
		}
		if list.maxEnd[i] <= pos {
			// Nothing from here on reaches pos.
			break
		}
		if p.End > pos {
			hits = append(hits, p)
		}
	}
	return hits
}
