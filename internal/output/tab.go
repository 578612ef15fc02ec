// Package output provides peak statistics output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/omics-tools/peakvar/internal/peak"
	"github.com/omics-tools/peakvar/internal/region"
)

// TabWriter writes per-peak variant statistics in tab-delimited format:
// the ten narrowPeak columns followed by per-region nucleotide sizes,
// per-region variant counts and the variant total. With onlyRepr set the
// region columns carry the representative-region tables instead of the
// raw membership tables.
type TabWriter struct {
	w        *bufio.Writer
	onlyRepr bool
}

// NewTabWriter creates a new tab-delimited statistics writer.
func NewTabWriter(w io.Writer, onlyRepr bool) *TabWriter {
	return &TabWriter{
		w:        bufio.NewWriter(w),
		onlyRepr: onlyRepr,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	columns := []string{
		"#chrom",
		"start",
		"end",
		"name",
		"score",
		"strand",
		"signal_value",
		"p_value",
		"q_value",
		"point_source",
	}
	for _, r := range region.All() {
		columns = append(columns, "size_"+string(r))
	}
	for _, r := range region.All() {
		columns = append(columns, "var_cnt_"+string(r))
	}
	columns = append(columns, "var_cnt_total")

	_, err := tw.w.WriteString(strings.Join(columns, "\t") + "\n")
	return err
}

// Write writes the statistics row for a single peak.
func (tw *TabWriter) Write(p *peak.AnnotatedPeak) error {
	sizes := p.RegionSize(tw.onlyRepr)
	cnts := p.RegionVarCnt(tw.onlyRepr)

	values := []string{p.String()}
	for _, r := range region.All() {
		values = append(values, fmt.Sprintf("%d", sizes[r]))
	}
	for _, r := range region.All() {
		values = append(values, fmt.Sprintf("%d", cnts[r]))
	}
	values = append(values, fmt.Sprintf("%d", p.VarCnt()))

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
