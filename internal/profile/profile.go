// Package profile drives the per-peak variant distribution statistics:
// it annotates peaks against a gene model, places variants from one or
// more VCF files, merges replicates and writes the resulting tables.
package profile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/omics-tools/peakvar/internal/genemodel"
	"github.com/omics-tools/peakvar/internal/peak"
	"github.com/omics-tools/peakvar/internal/vcf"
)

// StatsWriter is the interface for writing per-peak statistics.
type StatsWriter interface {
	WriteHeader() error
	Write(p *peak.AnnotatedPeak) error
	Flush() error
}

// Profiler computes variant distribution statistics over peaks.
type Profiler struct {
	model  *genemodel.Model
	window int64
	logger *zap.Logger
}

// New creates a profiler backed by the given gene model.
func New(model *genemodel.Model) *Profiler {
	return &Profiler{
		model:  model,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and warning messages.
func (pr *Profiler) SetLogger(l *zap.Logger) {
	pr.logger = l
}

// SetWindow configures slicing of each peak into fixed-size windows
// before output. Zero disables slicing.
func (pr *Profiler) SetWindow(n int64) {
	pr.window = n
}

// Run annotates the peaks, places the variants of every VCF file and
// writes one row per peak (or per window when window slicing is on).
// The first VCF file populates the peaks directly; each further file is
// treated as a replicate over the same peak set whose distribution is
// combined in.
func (pr *Profiler) Run(narrowPeaks []*peak.NarrowPeak, vcfPaths []string, w StatsWriter) error {
	annotated, err := pr.annotatePeaks(narrowPeaks)
	if err != nil {
		return err
	}

	for i, path := range vcfPaths {
		targets := annotated
		if i > 0 {
			targets, err = pr.replicatePeaks(annotated)
			if err != nil {
				return err
			}
		}

		if err := pr.placeVariants(path, targets); err != nil {
			return err
		}

		if i > 0 {
			for j, p := range annotated {
				if err := p.Combine(targets[j]); err != nil {
					return fmt.Errorf("combine replicate %s: %w", path, err)
				}
			}
		}
	}

	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range annotated {
		if err := pr.writePeak(p, w); err != nil {
			return err
		}
	}

	return w.Flush()
}

// replicatePeaks builds a fresh, empty peak set over the same intervals,
// reusing the already-computed annotation vectors.
func (pr *Profiler) replicatePeaks(annotated []*peak.AnnotatedPeak) ([]*peak.AnnotatedPeak, error) {
	replicate := make([]*peak.AnnotatedPeak, len(annotated))
	for i, src := range annotated {
		p := peak.Annotate(&src.NarrowPeak)
		if err := p.GeneBasedAnnotation(src.AnnoVals()); err != nil {
			return nil, err
		}
		replicate[i] = p
	}
	return replicate, nil
}

// placeVariants reads one VCF file and places every in-range variant
// instance into the peaks containing it.
func (pr *Profiler) placeVariants(path string, peaks []*peak.AnnotatedPeak) error {
	parser, err := vcf.NewParser(path)
	if err != nil {
		return err
	}
	defer parser.Close()

	index := buildPeakIndex(peaks)

	placed, skipped := 0, 0
	for {
		v, err := parser.Next()
		if err != nil {
			return fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}

		for _, instance := range vcf.SplitMultiAllelic(v) {
			pr.model.AnnotateVariant(instance)

			hits := index.containing(instance.Chrom, instance.Pos-1)
			if len(hits) == 0 {
				skipped++
				continue
			}
			for _, p := range hits {
				if err := p.PutVariant(instance); err != nil {
					return fmt.Errorf("place variant %s:%d: %w", instance.Chrom, instance.Pos, err)
				}
			}
			placed++
		}
	}

	pr.logger.Info("placed variants",
		zap.String("vcf", path),
		zap.Int("placed", placed),
		zap.Int("outside_peaks", skipped))
	return nil
}

// writePeak writes one peak, sliced into windows when configured.
func (pr *Profiler) writePeak(p *peak.AnnotatedPeak, w StatsWriter) error {
	if pr.window <= 0 {
		return w.Write(p)
	}

	for start := p.Start; start < p.End; start += pr.window {
		end := start + pr.window
		if end > p.End {
			end = p.End
		}
		window, err := p.Cut(start, end)
		if err != nil {
			return fmt.Errorf("cut window [%d, %d): %w", start, end, err)
		}
		if err := w.Write(window); err != nil {
			return err
		}
	}
	return nil
}
