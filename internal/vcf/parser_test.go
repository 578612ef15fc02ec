package vcf

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_SampleFile(t *testing.T) {
	p, err := NewParser(filepath.Join("testdata", "sample.vcf"))
	require.NoError(t, err)
	defer p.Close()

	assert.Len(t, p.Header(), 3)

	var variants []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		variants = append(variants, v)
	}

	require.Len(t, variants, 3)

	assert.Equal(t, "chr1", variants[0].Chrom)
	assert.Equal(t, int64(104), variants[0].Pos)
	assert.Equal(t, "rs1", variants[0].ID)
	assert.Equal(t, "A", variants[0].Ref)
	assert.Equal(t, "G", variants[0].Alt)
	assert.Equal(t, 50.0, variants[0].Qual)
	assert.Equal(t, "12", variants[0].Info["DP"])

	assert.Equal(t, "T,A", variants[1].Alt)
	assert.Equal(t, true, variants[2].Info["SOMATIC"])
}

func TestParser_FromReader(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t10\t.\tA\tC\t.\t.\t.\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(10), v.Pos)

	v, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, v, "end of input returns nil, nil")
}

func TestParser_MissingHeader(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("chr1\t10\t.\tA\tC\t.\t.\t.\n"))
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParser_TruncatedLine(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t10\t.\tA\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = p.Next()
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
}

func TestParser_InvalidPosition(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\tnope\t.\tA\tC\t.\t.\t.\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = p.Next()
	assert.Error(t, err)
}

func TestSplitMultiAllelic(t *testing.T) {
	v := &Variant{Chrom: "chr1", Pos: 106, Ref: "C", Alt: "T,A"}

	split := SplitMultiAllelic(v)
	require.Len(t, split, 2)
	assert.Equal(t, "T", split[0].Alt)
	assert.Equal(t, "A", split[1].Alt)
	assert.Equal(t, int64(106), split[1].Pos)

	single := &Variant{Chrom: "chr1", Pos: 10, Ref: "A", Alt: "G"}
	assert.Equal(t, []*Variant{single}, SplitMultiAllelic(single))
}
