package genemodel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/omics-tools/peakvar/internal/region"
	"github.com/omics-tools/peakvar/internal/vcf"
)

// strands that carry independent annotations.
var strands = [2]string{"+", "-"}

// Model indexes gene features per chromosome and strand and answers the
// two annotation queries the peak statistics need: the per-nucleotide
// annotation vector of an interval, and the annotation of a single
// variant position.
type Model struct {
	features map[string][]*Feature     // chrom+strand -> features
	index    map[string]*featureIndex  // chrom+strand -> stabbing index
	count    int
	logger   *zap.Logger
}

// NewModel creates an empty gene model.
func NewModel() *Model {
	return &Model{
		features: make(map[string][]*Feature),
		index:    make(map[string]*featureIndex),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for load and annotation messages.
func (m *Model) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Add inserts a feature into the model. Indexes are rebuilt lazily on
// the next query.
func (m *Model) Add(f *Feature) error {
	if f.Start >= f.End {
		return fmt.Errorf("feature %s %s:[%d, %d) has no span", f.ID, f.Chrom, f.Start, f.End)
	}
	if f.Strand != "+" && f.Strand != "-" {
		return fmt.Errorf("feature %s has invalid strand %q", f.ID, f.Strand)
	}
	if f.Region.Mask() == 0 {
		return fmt.Errorf("feature %s has non-annotatable region %q", f.ID, f.Region)
	}

	key := f.Chrom + f.Strand
	m.features[key] = append(m.features[key], f)
	delete(m.index, key)
	m.count++
	return nil
}

// FeatureCount returns the total number of features in the model.
func (m *Model) FeatureCount() int {
	return m.count
}

// BuildIndexes builds every per-chromosome index eagerly. Queries are
// read-only afterwards, so a built model is safe for concurrent use.
func (m *Model) BuildIndexes() {
	for key, features := range m.features {
		if _, ok := m.index[key]; !ok {
			m.index[key] = buildFeatureIndex(features)
		}
	}
}

// featuresAt returns the features containing a 0-based position on one
// chromosome strand. A chrom/strand with no features answers empty
// without touching the index, so after BuildIndexes no query path
// writes to the model. Indexes for known keys are otherwise built
// lazily; call BuildIndexes first when querying from multiple
// goroutines.
func (m *Model) featuresAt(chrom, strand string, pos int64) []*Feature {
	key := chrom + strand
	if ix, ok := m.index[key]; ok {
		return ix.stab(pos)
	}
	features, ok := m.features[key]
	if !ok {
		return nil
	}
	ix := buildFeatureIndex(features)
	m.index[key] = ix
	return ix.stab(pos)
}

// queryStrands resolves a peak strand to the feature strands it reads
// from. Strandless peaks (".") take the union of both strands.
func queryStrands(strand string) ([]string, error) {
	switch strand {
	case "+", "-":
		return []string{strand}, nil
	case ".":
		return strands[:], nil
	}
	return nil, fmt.Errorf("invalid strand %q", strand)
}

// AnnoValsFor computes the per-nucleotide annotation vector of the
// half-open interval [start, end) on one chromosome strand, by OR-ing
// the region bits of every feature covering each nucleotide.
func (m *Model) AnnoValsFor(chrom string, start, end int64, strand string) ([]region.AnnoValue, error) {
	if start >= end {
		return nil, fmt.Errorf("interval [%d, %d) has no span", start, end)
	}
	query, err := queryStrands(strand)
	if err != nil {
		return nil, err
	}

	vals := make([]region.AnnoValue, end-start)
	for pos := start; pos < end; pos++ {
		var mask region.AnnoValue
		for _, s := range query {
			for _, f := range m.featuresAt(chrom, s, pos) {
				mask |= f.Region.Mask()
			}
		}
		vals[pos-start] = mask
	}
	return vals, nil
}

// AnnotateVariant records the strand-aware annotation value and gene
// associations of a variant from the features covering its position.
// Besides the two strand entries it records a strandless entry ("."),
// the union of both, so strandless peaks can place the variant too.
func (m *Model) AnnotateVariant(v *vcf.Variant) {
	pos := v.Pos - 1 // 1-based -> 0-based
	var unionMask region.AnnoValue
	unionGenes := make(region.GeneMap)
	for _, strand := range strands {
		var mask region.AnnoValue
		genes := make(region.GeneMap)
		for _, f := range m.featuresAt(v.Chrom, strand, pos) {
			mask |= f.Region.Mask()
			genes.Add(f.Symbol, f.ID, f.Region)
			unionGenes.Add(f.Symbol, f.ID, f.Region)
		}
		v.SetAnnotation(strand, mask, genes)
		unionMask |= mask
	}
	v.SetAnnotation(".", unionMask, unionGenes)
}
