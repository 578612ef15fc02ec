package peak

import (
	"fmt"
	"sort"

	"github.com/omics-tools/peakvar/internal/region"
	"github.com/omics-tools/peakvar/internal/vcf"
)

// AnnotatedPeak extends NarrowPeak with a per-nucleotide annotation
// vector and two parallel sets of genic region statistics: raw counts,
// where a nucleotide or variant is credited to every region it belongs
// to, and representative counts, where it is credited to the single
// highest-priority region only. A nucleotide that is simultaneously
// 5' and 3' UTR is credited to both representative UTR buckets, so the
// representative totals may exceed the peak length.
type AnnotatedPeak struct {
	NarrowPeak

	annoVals []region.AnnoValue // one value per nucleotide in [Start, End)

	regionSize     map[region.GenicRegion]int64
	reprRegionSize map[region.GenicRegion]int64

	varPosCnt     map[int64]int                // 0-based position -> variant count
	varPosAnnoVal map[int64]region.AnnoValue   // 0-based position -> annotation value
	varPosGenes   map[int64]region.GeneMap     // 0-based position -> associated genes

	regionVarCnt     map[region.GenicRegion]int
	reprRegionVarCnt map[region.GenicRegion]int
}

// NewAnnotatedPeak creates an empty annotated peak over [start, end).
func NewAnnotatedPeak(chrom string, start, end int64, strand string) (*AnnotatedPeak, error) {
	if start >= end {
		return nil, fmt.Errorf("peak start %d is not before end %d", start, end)
	}
	np := NewNarrowPeak()
	np.Chrom = chrom
	np.Start = start
	np.End = end
	np.Strand = strand
	return newAnnotated(np), nil
}

// Annotate wraps a parsed narrowPeak record into an empty annotated
// peak, carrying over all ten descriptive columns.
func Annotate(np *NarrowPeak) *AnnotatedPeak {
	clone := *np
	clone.regionSize = nil
	clone.varPosCnt = nil
	clone.varPosRegion = nil
	return newAnnotated(&clone)
}

func newAnnotated(np *NarrowPeak) *AnnotatedPeak {
	p := &AnnotatedPeak{
		NarrowPeak:       *np,
		regionSize:       make(map[region.GenicRegion]int64),
		reprRegionSize:   make(map[region.GenicRegion]int64),
		varPosCnt:        make(map[int64]int),
		varPosAnnoVal:    make(map[int64]region.AnnoValue),
		varPosGenes:      make(map[int64]region.GeneMap),
		regionVarCnt:     make(map[region.GenicRegion]int),
		reprRegionVarCnt: make(map[region.GenicRegion]int),
	}
	for _, r := range region.All() {
		p.regionSize[r] = 0
		p.reprRegionSize[r] = 0
		p.regionVarCnt[r] = 0
		p.reprRegionVarCnt[r] = 0
	}
	return p
}

// GeneBasedAnnotation stores the per-nucleotide annotation vector and
// builds the raw and representative region size tables from it. It is
// called exactly once per peak; the vector length must equal the peak
// span.
func (p *AnnotatedPeak) GeneBasedAnnotation(annoVals []region.AnnoValue) error {
	if p.annoVals != nil {
		return fmt.Errorf("peak %s:[%d, %d) is already annotated", p.Chrom, p.Start, p.End)
	}
	if int64(len(annoVals)) != p.Size() {
		return fmt.Errorf("annotation vector length %d does not match peak size %d", len(annoVals), p.Size())
	}

	for i, val := range annoVals {
		membership, err := region.ParseAnnoVal(val)
		if err != nil {
			return fmt.Errorf("annotation value at offset %d: %w", i, err)
		}
		for r, ok := range membership {
			if ok {
				p.regionSize[r]++
			}
		}

		multi, repr, err := region.ReprAnno(val)
		if err != nil {
			return fmt.Errorf("annotation value at offset %d: %w", i, err)
		}
		if multi {
			p.reprRegionSize[region.UTR5]++
			p.reprRegionSize[region.UTR3]++
		} else {
			p.reprRegionSize[repr]++
		}
	}

	p.annoVals = make([]region.AnnoValue, len(annoVals))
	copy(p.annoVals, annoVals)
	return nil
}

// PutVariant adds one observed variant instance to the peak's
// distribution. The variant position is 1-based and converted
// internally. The annotation value and associated genes for a position
// are set on first sight; a later variant at the same position must
// re-assert identical values, otherwise the external annotation source
// is inconsistent and the call fails.
func (p *AnnotatedPeak) PutVariant(v *vcf.Variant) error {
	pos := v.Pos - 1 // 1-based -> 0-based
	if pos < p.Start || pos >= p.End {
		return fmt.Errorf("variant position %d outside peak %s:[%d, %d)", pos, p.Chrom, p.Start, p.End)
	}

	annoVal, err := v.AnnoVal(p.Strand)
	if err != nil {
		return err
	}
	genes, err := v.AssocGenes(p.Strand)
	if err != nil {
		return err
	}

	if prev, ok := p.varPosAnnoVal[pos]; ok {
		if prev != annoVal {
			return fmt.Errorf("annotation value at %d changed from %d to %d", pos, prev, annoVal)
		}
	} else {
		p.varPosAnnoVal[pos] = annoVal
	}

	if prev, ok := p.varPosGenes[pos]; ok {
		if !prev.Equal(genes) {
			return fmt.Errorf("associated genes at %d do not match the earlier record", pos)
		}
	} else {
		p.varPosGenes[pos] = genes.Clone()
	}

	p.varPosCnt[pos]++
	return p.addRegionVarCnt(p.varPosAnnoVal[pos], 1)
}

// Combine unions another peak's variant observations into this one. Both
// peaks must denote the identical interval and strand; the intended use
// is merging replicate variant sets collected over the same coordinates.
// A position known to both peaks must carry identical annotation and
// genes, and only its count is added: its region aggregates were already
// counted when this peak first saw the position.
func (p *AnnotatedPeak) Combine(other *AnnotatedPeak) error {
	if !p.SameInterval(&other.NarrowPeak) {
		return fmt.Errorf("cannot combine %s:[%d, %d)/%s with %s:[%d, %d)/%s",
			p.Chrom, p.Start, p.End, p.Strand,
			other.Chrom, other.Start, other.End, other.Strand)
	}

	for pos, cnt := range other.varPosCnt {
		annoVal := other.varPosAnnoVal[pos]
		genes := other.varPosGenes[pos]

		if _, ok := p.varPosCnt[pos]; !ok {
			p.varPosAnnoVal[pos] = annoVal
			p.varPosGenes[pos] = genes.Clone()
			p.varPosCnt[pos] = cnt
			if err := p.addRegionVarCnt(annoVal, cnt); err != nil {
				return err
			}
			continue
		}

		if p.varPosAnnoVal[pos] != annoVal {
			return fmt.Errorf("combine: annotation value mismatch at %d (%d vs %d)", pos, p.varPosAnnoVal[pos], annoVal)
		}
		if !p.varPosGenes[pos].Equal(genes) {
			return fmt.Errorf("combine: associated genes mismatch at %d", pos)
		}
		p.varPosCnt[pos] += cnt
	}
	return nil
}

// Cut returns a new, fully independent peak restricted to [start, end),
// which must lie inside this peak. Region sizes are re-derived from the
// sliced annotation vector; variant records inside the sub-interval are
// copied with their counts folded into the new peak's aggregates.
func (p *AnnotatedPeak) Cut(start, end int64) (*AnnotatedPeak, error) {
	if start < p.Start || start >= end || end > p.End {
		return nil, fmt.Errorf("cut [%d, %d) outside peak [%d, %d)", start, end, p.Start, p.End)
	}
	if p.annoVals == nil {
		return nil, fmt.Errorf("peak %s:[%d, %d) is not annotated", p.Chrom, p.Start, p.End)
	}

	cut, err := NewAnnotatedPeak(p.Chrom, start, end, p.Strand)
	if err != nil {
		return nil, err
	}

	relStart := start - p.Start
	relEnd := end - p.Start
	if err := cut.GeneBasedAnnotation(p.annoVals[relStart:relEnd]); err != nil {
		return nil, err
	}

	// Positions are scanned in increasing order, so the first position
	// at or past the cut end terminates the scan.
	for _, pos := range p.VarPosList() {
		if pos >= end {
			break
		}
		if pos < start {
			continue
		}

		cnt := p.varPosCnt[pos]
		annoVal := p.varPosAnnoVal[pos]

		cut.varPosCnt[pos] = cnt
		cut.varPosAnnoVal[pos] = annoVal
		cut.varPosGenes[pos] = p.varPosGenes[pos].Clone()

		if err := cut.addRegionVarCnt(annoVal, cnt); err != nil {
			return nil, err
		}
	}

	return cut, nil
}

// addRegionVarCnt folds n variant observations with the given annotation
// value into the raw and representative region aggregates.
func (p *AnnotatedPeak) addRegionVarCnt(val region.AnnoValue, n int) error {
	membership, err := region.ParseAnnoVal(val)
	if err != nil {
		return err
	}
	for r, ok := range membership {
		if ok {
			p.regionVarCnt[r] += n
		}
	}

	multi, repr, err := region.ReprAnno(val)
	if err != nil {
		return err
	}
	if multi {
		p.reprRegionVarCnt[region.UTR5] += n
		p.reprRegionVarCnt[region.UTR3] += n
	} else {
		p.reprRegionVarCnt[repr] += n
	}
	return nil
}

// AnnoVals returns the per-nucleotide annotation vector, or nil if the
// peak has not been annotated. Callers must not modify it.
func (p *AnnotatedPeak) AnnoVals() []region.AnnoValue {
	return p.annoVals
}

// RegionSize returns nucleotide counts per genic region; with onlyRepr
// each nucleotide is credited to its representative region only.
// The returned map is the peak's own table; callers must not modify it.
func (p *AnnotatedPeak) RegionSize(onlyRepr bool) map[region.GenicRegion]int64 {
	if onlyRepr {
		return p.reprRegionSize
	}
	return p.regionSize
}

// RegionVarCnt returns variant counts per genic region; with onlyRepr
// each variant is credited to its representative region only.
// The returned map is the peak's own table; callers must not modify it.
func (p *AnnotatedPeak) RegionVarCnt(onlyRepr bool) map[region.GenicRegion]int {
	if onlyRepr {
		return p.reprRegionVarCnt
	}
	return p.regionVarCnt
}

// VarPosList returns the 0-based positions of all recorded variants in
// increasing order.
func (p *AnnotatedPeak) VarPosList() []int64 {
	positions := make([]int64, 0, len(p.varPosCnt))
	for pos := range p.varPosCnt {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return positions
}

// VarCnt returns the total number of variant observations on the peak.
func (p *AnnotatedPeak) VarCnt() int {
	total := 0
	for _, cnt := range p.varPosCnt {
		total += cnt
	}
	return total
}

// VarCntAt returns the variant count recorded at a 0-based position.
// Querying a position that was never recorded is a lookup miss.
func (p *AnnotatedPeak) VarCntAt(pos int64) (int, error) {
	cnt, ok := p.varPosCnt[pos]
	if !ok {
		return 0, fmt.Errorf("no variant recorded at position %d", pos)
	}
	return cnt, nil
}

// AnnoValAt returns the annotation value recorded at a 0-based variant
// position.
func (p *AnnotatedPeak) AnnoValAt(pos int64) (region.AnnoValue, error) {
	val, ok := p.varPosAnnoVal[pos]
	if !ok {
		return 0, fmt.Errorf("no variant recorded at position %d", pos)
	}
	return val, nil
}

// GenesAt returns the gene associations recorded at a 0-based variant
// position.
func (p *AnnotatedPeak) GenesAt(pos int64) (region.GeneMap, error) {
	genes, ok := p.varPosGenes[pos]
	if !ok {
		return nil, fmt.Errorf("no variant recorded at position %d", pos)
	}
	return genes, nil
}
