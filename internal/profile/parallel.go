package profile

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/omics-tools/peakvar/internal/peak"
)

// workItem holds a parsed peak ready for gene-based annotation.
type workItem struct {
	seq  int
	peak *peak.NarrowPeak
}

// workResult holds the annotated peak for a single input peak.
type workResult struct {
	seq  int
	peak *peak.AnnotatedPeak
	err  error
}

// annotatePeaks annotates every peak against the gene model using a
// pool of workers and returns the peaks in input order. The model's
// indexes are built eagerly first so queries are read-only afterwards.
func (pr *Profiler) annotatePeaks(narrowPeaks []*peak.NarrowPeak) ([]*peak.AnnotatedPeak, error) {
	pr.model.BuildIndexes()

	items := make(chan workItem, len(narrowPeaks))
	for i, np := range narrowPeaks {
		items <- workItem{seq: i, peak: np}
	}
	close(items)

	results := pr.parallelAnnotate(items, 0)

	annotated := make([]*peak.AnnotatedPeak, len(narrowPeaks))
	err := orderedCollect(results, func(r workResult) error {
		if r.err != nil {
			return r.err
		}
		annotated[r.seq] = r.peak
		return nil
	})
	if err != nil {
		return nil, err
	}

	pr.logger.Info("annotated peaks", zap.Int("peaks", len(annotated)))
	return annotated, nil
}

// annotateOne annotates a single peak: it queries the gene model for
// the peak's per-nucleotide annotation vector and derives the region
// size tables from it.
func (pr *Profiler) annotateOne(np *peak.NarrowPeak) (*peak.AnnotatedPeak, error) {
	p := peak.Annotate(np)
	vals, err := pr.model.AnnoValsFor(p.Chrom, p.Start, p.End, p.Strand)
	if err != nil {
		return nil, err
	}
	if err := p.GeneBasedAnnotation(vals); err != nil {
		return nil, err
	}
	return p, nil
}

// parallelAnnotate annotates work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not
// sequence order). Use orderedCollect to consume results in
// sequence-number order. If workers is 0, runtime.NumCPU() is used.
func (pr *Profiler) parallelAnnotate(items <-chan workItem, workers int) <-chan workResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				p, err := pr.annotateOne(item.peak)
				results <- workResult{seq: item.seq, peak: p, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// orderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them as
// soon as the next expected sequence number is available. Blocks until
// the results channel is closed.
func orderedCollect(results <-chan workResult, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
