// Package peak models genomic peak intervals and the gene-based
// statistics of the variants observed on them.
package peak

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/omics-tools/peakvar/internal/region"
	"github.com/omics-tools/peakvar/internal/vcf"
)

// entryFields is the fixed column count of a narrowPeak BED record.
const entryFields = 10

// NarrowPeak represents one entry of a narrowPeak BED file: a contiguous
// genomic interval [Start, End) on one strand. The descriptive columns
// after the coordinates are kept as strings because merged BED files
// carry non-numeric placeholders in them.
type NarrowPeak struct {
	Chrom    string
	Start    int64 // 0-based, inclusive
	End      int64 // 0-based, exclusive
	Name     string
	Score    string
	Strand   string
	SigVal   string
	PVal     string
	QVal     string
	PointSrc string

	regionSize   map[region.GenicRegion]int64   // nucleotides per genic region
	varPosCnt    map[int64]int                  // 0-based variant position -> count
	varPosRegion map[int64]region.GenicRegion   // 0-based variant position -> region
}

// NewNarrowPeak returns a peak with the conventional narrowPeak column
// placeholders.
func NewNarrowPeak() *NarrowPeak {
	return &NarrowPeak{
		Name:     ".",
		Score:    "0",
		Strand:   ".",
		SigVal:   "0.0",
		PVal:     "-1.0",
		QVal:     "-1.0",
		PointSrc: "-1",
	}
}

// ParseEntry fills the peak from one tab-separated narrowPeak record.
func (p *NarrowPeak) ParseEntry(entry string) error {
	fields := strings.Split(entry, "\t")
	if len(fields) < entryFields {
		return fmt.Errorf("narrowPeak entry has %d fields, want %d", len(fields), entryFields)
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid peak start %q: %w", fields[1], err)
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid peak end %q: %w", fields[2], err)
	}
	if start >= end {
		return fmt.Errorf("peak start %d is not before end %d", start, end)
	}

	p.Chrom = fields[0]
	p.Start = start
	p.End = end
	p.Name = fields[3]
	p.Score = fields[4]
	p.Strand = fields[5]
	p.SigVal = fields[6]
	p.PVal = fields[7]
	p.QVal = fields[8]
	p.PointSrc = fields[9]
	return nil
}

// String re-emits the ten tab-separated narrowPeak columns.
func (p *NarrowPeak) String() string {
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s",
		p.Chrom, p.Start, p.End, p.Name, p.Score,
		p.Strand, p.SigVal, p.PVal, p.QVal, p.PointSrc)
}

// Position returns the half-open interval of the peak.
func (p *NarrowPeak) Position() (start, end int64) {
	return p.Start, p.End
}

// Size returns the number of nucleotides the peak spans.
func (p *NarrowPeak) Size() int64 {
	return p.End - p.Start
}

// SameInterval reports whether two peaks denote the identical interval
// and strand.
func (p *NarrowPeak) SameInterval(other *NarrowPeak) bool {
	return p.Chrom == other.Chrom && p.Start == other.Start &&
		p.End == other.End && p.Strand == other.Strand
}

// SetGenicRegionSize builds the per-region size histogram from one 6-bit
// genic region code per nucleotide (see region.AnnoValue for the bit
// table; 0 means intergenic). Codes of 64 or more signal malformed input
// and abort the call.
func (p *NarrowPeak) SetGenicRegionSize(codes []int) error {
	size := make(map[region.GenicRegion]int64, len(region.All()))
	for _, r := range region.All() {
		size[r] = 0
	}

	for i, code := range codes {
		membership, err := region.ParseAnnoVal(region.AnnoValue(code))
		if err != nil {
			return fmt.Errorf("genic region code at offset %d: %w", i, err)
		}
		for r, ok := range membership {
			if ok {
				size[r]++
			}
		}
	}

	p.regionSize = size
	return nil
}

// RecordVariant places a variant into the peak's distribution. The
// variant position is 1-based and converted internally. Re-recording a
// position with a different single-region classification is a
// consistency failure.
func (p *NarrowPeak) RecordVariant(v *vcf.Variant) error {
	pos := v.Pos - 1 // 1-based -> 0-based
	if pos < p.Start || pos >= p.End {
		return fmt.Errorf("variant position %d outside peak %s:[%d, %d)", pos, p.Chrom, p.Start, p.End)
	}

	r, err := v.GenicRegion()
	if err != nil {
		return err
	}

	if p.varPosCnt == nil {
		p.varPosCnt = make(map[int64]int)
		p.varPosRegion = make(map[int64]region.GenicRegion)
	}

	if prev, ok := p.varPosRegion[pos]; ok {
		if prev != r {
			return fmt.Errorf("variant at %d reclassified from %s to %s", pos, prev, r)
		}
	} else {
		p.varPosRegion[pos] = r
	}
	p.varPosCnt[pos]++
	return nil
}

// RegionSize returns the per-region nucleotide counts built by
// SetGenicRegionSize. The returned map is the peak's own table; callers
// must not modify it.
func (p *NarrowPeak) RegionSize() map[region.GenicRegion]int64 {
	return p.regionSize
}

// VarCntByRegion derives the number of recorded variants per genic
// region from the per-position tables.
func (p *NarrowPeak) VarCntByRegion() map[region.GenicRegion]int {
	cnt := make(map[region.GenicRegion]int)
	for pos, n := range p.varPosCnt {
		cnt[p.varPosRegion[pos]] += n
	}
	return cnt
}
