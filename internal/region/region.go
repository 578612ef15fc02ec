// Package region defines the genic region categories and the 6-bit
// annotation code that classifies a single nucleotide against them.
package region

import "fmt"

// GenicRegion classifies a nucleotide's location relative to gene structure.
type GenicRegion string

// Genic region categories. A nucleotide may belong to several of these at
// once (overlapping transcripts), except Intergenic which is exclusive and
// implied by an annotation value of zero.
const (
	ORF           GenicRegion = "ORF"
	UTR5          GenicRegion = "5UTR"
	UTR3          GenicRegion = "3UTR"
	NcRNAExonic   GenicRegion = "ncRNA_exonic"
	Intronic      GenicRegion = "intronic"
	NcRNAIntronic GenicRegion = "ncRNA_intronic"
	Intergenic    GenicRegion = "intergenic"

	// UTR is the composite 5'/3' UTR category used only by the 8-way
	// single-region classification of the base peak.
	UTR GenicRegion = "UTR"
)

// regions lists every category in code-table order.
var regions = [...]GenicRegion{ORF, UTR5, UTR3, NcRNAExonic, Intronic, NcRNAIntronic, Intergenic}

// All returns the genic region categories in code-table order.
// The returned slice is shared; callers must not modify it.
func All() []GenicRegion {
	return regions[:]
}

// AnnoValue is the gene-based annotation code of one nucleotide.
//
// The low 6 bits are a membership mask, most significant bit first:
//
//	bit 5 (32): ORF
//	bit 4 (16): 5'UTR
//	bit 3  (8): 3'UTR
//	bit 2  (4): ncRNA exonic
//	bit 1  (2): intronic
//	bit 0  (1): ncRNA intronic
//
// A nucleotide annotated as ORF and intronic therefore carries the value
// 34 (0b100010). Zero means intergenic.
type AnnoValue int

// MaxAnnoVal is the exclusive upper bound of a valid annotation value.
const MaxAnnoVal AnnoValue = 64

// maskBits maps each 6-bit position (most significant first) to its region.
var maskBits = [6]GenicRegion{ORF, UTR5, UTR3, NcRNAExonic, Intronic, NcRNAIntronic}

// Mask returns the annotation bit for a region, or zero for Intergenic
// and the composite UTR category, which have no bit of their own.
func (r GenicRegion) Mask() AnnoValue {
	for i, br := range maskBits {
		if br == r {
			return 1 << (5 - i)
		}
	}
	return 0
}

// ParseAnnoVal decodes an annotation value into a full membership table
// keyed by every genic region category. A zero value marks the nucleotide
// as intergenic. Values outside [0, 63] are malformed.
func ParseAnnoVal(v AnnoValue) (map[GenicRegion]bool, error) {
	if v < 0 || v >= MaxAnnoVal {
		return nil, fmt.Errorf("annotation value %d outside [0, %d]", v, MaxAnnoVal-1)
	}

	membership := make(map[GenicRegion]bool, len(regions))
	for _, r := range regions {
		membership[r] = false
	}

	if v == 0 {
		membership[Intergenic] = true
		return membership, nil
	}

	for i, r := range maskBits {
		if v&(1<<(5-i)) != 0 {
			membership[r] = true
		}
	}
	return membership, nil
}

// ReprAnno decodes the representative classification of an annotation
// value: the single highest-priority region the nucleotide is credited to.
// Priority runs ORF > 5'UTR > 3'UTR > ncRNA exonic > intronic >
// ncRNA intronic > intergenic. A nucleotide that is simultaneously 5' and
// 3' UTR (and not ORF) has no single representative; it reports
// multi=true and must be credited to both UTR buckets by the caller.
func ReprAnno(v AnnoValue) (multi bool, r GenicRegion, err error) {
	if v < 0 || v >= MaxAnnoVal {
		return false, "", fmt.Errorf("annotation value %d outside [0, %d]", v, MaxAnnoVal-1)
	}

	if v == 0 {
		return false, Intergenic, nil
	}
	if v&ORF.Mask() != 0 {
		return false, ORF, nil
	}
	if v&UTR5.Mask() != 0 && v&UTR3.Mask() != 0 {
		return true, "", nil
	}
	for _, br := range maskBits[1:] {
		if v&br.Mask() != 0 {
			return false, br, nil
		}
	}
	return false, Intergenic, nil
}

// VarRegion collapses an annotation value into the 8-way single-region
// classification used by the base peak: the representative region, with
// the dual 5'/3' UTR case folded into the composite UTR category.
func VarRegion(v AnnoValue) (GenicRegion, error) {
	multi, r, err := ReprAnno(v)
	if err != nil {
		return "", err
	}
	if multi {
		return UTR, nil
	}
	return r, nil
}
