package genemodel

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omics-tools/peakvar/internal/region"
	"github.com/omics-tools/peakvar/internal/vcf"
)

func loadTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel()
	loader := NewLoader(filepath.Join("testdata", "genes.tsv"))
	require.NoError(t, loader.Load(m))
	require.Equal(t, 5, m.FeatureCount())
	return m
}

func TestModel_AnnoValsFor(t *testing.T) {
	m := loadTestModel(t)

	vals, err := m.AnnoValsFor("chr1", 95, 135, "+")
	require.NoError(t, err)
	require.Len(t, vals, 40)

	// Upstream of GENE1: intergenic.
	assert.Equal(t, region.AnnoValue(0), vals[0], "position 95")
	// ORF only.
	assert.Equal(t, region.ORF.Mask(), vals[5], "position 100")
	// ORF overlapping the NM_0002 5'UTR.
	assert.Equal(t, region.ORF.Mask()|region.UTR5.Mask(), vals[25], "position 120")
	// Intron overlapping the NM_0002 5'UTR.
	assert.Equal(t, region.Intronic.Mask()|region.UTR5.Mask(), vals[35], "position 130")

	// The minus-strand ncRNA is invisible to a plus-strand interval.
	vals, err = m.AnnoValsFor("chr1", 150, 160, "+")
	require.NoError(t, err)
	assert.Equal(t, region.Intronic.Mask(), vals[0], "position 150")

	vals, err = m.AnnoValsFor("chr1", 150, 160, "-")
	require.NoError(t, err)
	assert.Equal(t, region.NcRNAExonic.Mask(), vals[0], "position 150 on minus")
}

func TestModel_AnnoValsFor_StrandlessUnion(t *testing.T) {
	m := loadTestModel(t)

	vals, err := m.AnnoValsFor("chr1", 150, 151, ".")
	require.NoError(t, err)
	assert.Equal(t, region.Intronic.Mask()|region.NcRNAExonic.Mask(), vals[0])
}

func TestModel_AnnoValsFor_Errors(t *testing.T) {
	m := loadTestModel(t)

	_, err := m.AnnoValsFor("chr1", 10, 10, "+")
	assert.Error(t, err)
	_, err = m.AnnoValsFor("chr1", 10, 20, "x")
	assert.Error(t, err)
}

func TestModel_AnnotateVariant(t *testing.T) {
	m := loadTestModel(t)

	// 1-based 121 is 0-based 120: ORF + 5'UTR on plus, nothing on minus.
	v := &vcf.Variant{Chrom: "chr1", Pos: 121, Ref: "A", Alt: "G"}
	m.AnnotateVariant(v)

	val, err := v.AnnoVal("+")
	require.NoError(t, err)
	assert.Equal(t, region.ORF.Mask()|region.UTR5.Mask(), val)

	val, err = v.AnnoVal("-")
	require.NoError(t, err)
	assert.Equal(t, region.AnnoValue(0), val)

	genes, err := v.AssocGenes("+")
	require.NoError(t, err)
	want := make(region.GeneMap)
	want.Add("GENE1", "NM_0001", region.ORF)
	want.Add("GENE1", "NM_0002", region.UTR5)
	assert.True(t, want.Equal(genes))

	r, err := v.GenicRegion()
	require.NoError(t, err)
	assert.Equal(t, region.ORF, r)

	// The strandless entry is the union of both strands.
	u := &vcf.Variant{Chrom: "chr1", Pos: 151, Ref: "C", Alt: "T"}
	m.AnnotateVariant(u)
	val, err = u.AnnoVal(".")
	require.NoError(t, err)
	assert.Equal(t, region.Intronic.Mask()|region.NcRNAExonic.Mask(), val)
}

func TestModel_Add_Validation(t *testing.T) {
	m := NewModel()

	err := m.Add(&Feature{ID: "x", Chrom: "chr1", Start: 10, End: 10, Strand: "+", Region: region.ORF})
	assert.Error(t, err, "empty span")

	err = m.Add(&Feature{ID: "x", Chrom: "chr1", Start: 10, End: 20, Strand: "*", Region: region.ORF})
	assert.Error(t, err, "bad strand")

	err = m.Add(&Feature{ID: "x", Chrom: "chr1", Start: 10, End: 20, Strand: "+", Region: "exonish"})
	assert.Error(t, err, "unknown region")

	err = m.Add(&Feature{ID: "x", Chrom: "chr1", Start: 10, End: 20, Strand: "+", Region: region.Intergenic})
	assert.Error(t, err, "intergenic has no annotation bit")
}

func TestLoader_ParseErrors(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{"too few columns", "GENE1\tNM_1\tchr1\t1\t2\t+\n"},
		{"bad start", "GENE1\tNM_1\tchr1\tx\t2\t+\tORF\n"},
		{"bad region", "GENE1\tNM_1\tchr1\t1\t2\t+\tbogus\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "genes.tsv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			m := NewModel()
			err := NewLoader(path).Load(m)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestLoader_GzipSniff(t *testing.T) {
	// Gzip is detected by magic bytes, not by filename.
	path := filepath.Join(t.TempDir(), "genes.tsv")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("GENE1\tNM_1\tchr1\t100\t200\t+\tORF\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m := NewModel()
	require.NoError(t, NewLoader(path).Load(m))
	assert.Equal(t, 1, m.FeatureCount())
}

func TestFeatureIndex_Stab(t *testing.T) {
	features := []*Feature{
		{ID: "a", Start: 0, End: 10},
		{ID: "b", Start: 5, End: 15},
		{ID: "c", Start: 20, End: 30},
	}
	ix := buildFeatureIndex(features)

	ids := func(pos int64) []string {
		var out []string
		for _, f := range ix.stab(pos) {
			out = append(out, f.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a"}, ids(0))
	assert.ElementsMatch(t, []string{"a", "b"}, ids(7))
	assert.ElementsMatch(t, []string{"b"}, ids(10), "end is exclusive")
	assert.Empty(t, ids(17))
	assert.ElementsMatch(t, []string{"c"}, ids(29))
	assert.Empty(t, ids(30))
}

func TestFeatureIndex_Stab_NestedIntervals(t *testing.T) {
	// "a" starts before and ends after every later interval, as a long
	// gene span does around its short nested features.
	features := []*Feature{
		{ID: "a", Start: 0, End: 100},
		{ID: "b", Start: 10, End: 20},
		{ID: "c", Start: 30, End: 40},
	}
	ix := buildFeatureIndex(features)

	ids := func(pos int64) []string {
		var out []string
		for _, f := range ix.stab(pos) {
			out = append(out, f.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a", "b"}, ids(15))
	assert.ElementsMatch(t, []string{"a"}, ids(25), "between nested features")
	assert.ElementsMatch(t, []string{"a", "c"}, ids(35))
	assert.ElementsMatch(t, []string{"a"}, ids(50), "past every nested end")
	assert.ElementsMatch(t, []string{"a"}, ids(99))
	assert.Empty(t, ids(100))
}

func TestModel_AnnoValsFor_NestedFeature(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.Add(&Feature{Symbol: "G", ID: "NM_1", Chrom: "chr1", Start: 100, End: 200, Strand: "+", Region: region.ORF}))
	require.NoError(t, m.Add(&Feature{Symbol: "G", ID: "NM_2", Chrom: "chr1", Start: 120, End: 130, Strand: "+", Region: region.UTR5}))

	vals, err := m.AnnoValsFor("chr1", 150, 151, "+")
	require.NoError(t, err)
	assert.Equal(t, region.ORF.Mask(), vals[0], "inside the ORF, past the nested 5'UTR")

	vals, err = m.AnnoValsFor("chr1", 125, 126, "+")
	require.NoError(t, err)
	assert.Equal(t, region.ORF.Mask()|region.UTR5.Mask(), vals[0])
}

func TestModel_AnnoValsFor_NoFeatures(t *testing.T) {
	m := loadTestModel(t)

	vals, err := m.AnnoValsFor("chrM", 0, 10, "+")
	require.NoError(t, err)
	for i, v := range vals {
		assert.Equal(t, region.AnnoValue(0), v, "position %d", i)
	}

	// chr2 carries plus-strand features only.
	vals, err = m.AnnoValsFor("chr2", 100, 110, "-")
	require.NoError(t, err)
	assert.Equal(t, region.AnnoValue(0), vals[0])
}

func TestModel_ConcurrentQueries(t *testing.T) {
	m := loadTestModel(t)
	m.BuildIndexes()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				vals, err := m.AnnoValsFor("chr1", 100, 101, "+")
				assert.NoError(t, err)
				assert.Equal(t, region.ORF.Mask(), vals[0])

				// Chromosomes absent from the gene table must answer
				// empty without mutating the model.
				vals, err = m.AnnoValsFor("chrM", 0, 1, ".")
				assert.NoError(t, err)
				assert.Equal(t, region.AnnoValue(0), vals[0])

				v := &vcf.Variant{Chrom: "chrY", Pos: 5, Ref: "A", Alt: "T"}
				m.AnnotateVariant(v)
				val, err := v.AnnoVal(".")
				assert.NoError(t, err)
				assert.Equal(t, region.AnnoValue(0), val)
			}
		}()
	}
	wg.Wait()
}
