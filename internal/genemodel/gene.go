// Package genemodel provides the gene feature table that backs
// gene-based annotation of peaks and variants.
package genemodel

import "github.com/omics-tools/peakvar/internal/region"

// Feature is one genic region span of a gene on one strand.
// Coordinates are 0-based half-open, matching peak coordinates.
type Feature struct {
	Symbol string             // Gene symbol (e.g., KRAS)
	ID     string             // Gene or transcript identifier (e.g., NM_004985)
	Chrom  string             // Chromosome
	Start  int64              // 0-based, inclusive
	End    int64              // 0-based, exclusive
	Strand string             // "+" or "-"
	Region region.GenicRegion // Genic region category of the span
}

// Contains returns true if the 0-based position lies within the feature.
func (f *Feature) Contains(pos int64) bool {
	return pos >= f.Start && pos < f.End
}
