// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"fmt"

	"github.com/omics-tools/peakvar/internal/region"
)

// Variant represents a single genomic variant from a VCF file.
// Pos is 1-based throughout; peaks convert to their 0-based coordinates
// internally when a variant is placed.
type Variant struct {
	Chrom  string                 // Chromosome name (e.g., "12", "chr12")
	Pos    int64                  // 1-based genomic position
	ID     string                 // Variant identifier (e.g., rs ID)
	Ref    string                 // Reference allele
	Alt    string                 // Alternate allele (single allele after splitting)
	Qual   float64                // Quality score
	Filter string                 // Filter status (PASS or filter name)
	Info   map[string]interface{} // INFO field key-value pairs

	annoVals map[string]region.AnnoValue // strand -> annotation value
	genes    map[string]region.GeneMap   // strand -> associated genes
}

// SetAnnotation records the gene-based annotation of this variant for one
// strand. The gene-model annotator calls this before a variant is placed
// into any peak.
func (v *Variant) SetAnnotation(strand string, val region.AnnoValue, genes region.GeneMap) {
	if v.annoVals == nil {
		v.annoVals = make(map[string]region.AnnoValue, 2)
		v.genes = make(map[string]region.GeneMap, 2)
	}
	v.annoVals[strand] = val
	v.genes[strand] = genes
}

// AnnoVal returns the annotation value of this variant on the given
// strand. Placing an unannotated variant into a peak is a contract
// violation, reported as an error.
func (v *Variant) AnnoVal(strand string) (region.AnnoValue, error) {
	val, ok := v.annoVals[strand]
	if !ok {
		return 0, fmt.Errorf("variant %s:%d has no annotation for strand %q", v.Chrom, v.Pos, strand)
	}
	return val, nil
}

// AssocGenes returns the genes associated with this variant on the given
// strand.
func (v *Variant) AssocGenes(strand string) (region.GeneMap, error) {
	genes, ok := v.genes[strand]
	if !ok {
		return nil, fmt.Errorf("variant %s:%d has no gene associations for strand %q", v.Chrom, v.Pos, strand)
	}
	return genes, nil
}

// GenicRegion returns the collapsed single-region classification used by
// the base peak's 8-way table, derived from the union of both strands'
// annotation values.
func (v *Variant) GenicRegion() (region.GenicRegion, error) {
	if len(v.annoVals) == 0 {
		return "", fmt.Errorf("variant %s:%d is not annotated", v.Chrom, v.Pos)
	}
	var union region.AnnoValue
	for _, val := range v.annoVals {
		union |= val
	}
	return region.VarRegion(union)
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
