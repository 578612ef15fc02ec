package genemodel

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/omics-tools/peakvar/internal/region"
)

// Loader loads gene features from a tab-delimited table with the
// columns: symbol, id, chrom, start, end, strand, region.
// Start/end are 0-based half-open; region is a genic region category
// name. Lines starting with '#' are skipped.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a loader for the given feature table.
func NewLoader(path string) *Loader {
	return &Loader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for load progress messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load parses the feature table into the model.
// Supports both plain and gzipped files.
func (l *Loader) Load(m *Model) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open gene table: %w", err)
	}
	defer f.Close()

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = f.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read gene table: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek gene table: %w", err)
	}

	var reader io.Reader = f
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	if err := l.parse(reader, m); err != nil {
		return err
	}

	l.logger.Info("loaded gene model",
		zap.String("path", l.path),
		zap.Int("features", m.FeatureCount()))
	return nil
}

// parse reads feature lines into the model.
func (l *Loader) parse(r io.Reader, m *Model) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		feature, err := parseFeatureLine(line)
		if err != nil {
			return &ParseError{Line: lineNumber, Message: err.Error()}
		}
		if err := m.Add(feature); err != nil {
			return &ParseError{Line: lineNumber, Message: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read gene table: %w", err)
	}

	return nil
}

// parseFeatureLine splits one tab-separated feature record.
func parseFeatureLine(line string) (*Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 7 {
		return nil, fmt.Errorf("expected 7 columns, found %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q", fields[3])
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q", fields[4])
	}

	return &Feature{
		Symbol: fields[0],
		ID:     fields[1],
		Chrom:  fields[2],
		Start:  start,
		End:    end,
		Strand: fields[5],
		Region: region.GenicRegion(fields[6]),
	}, nil
}

// ParseError represents an error during gene table parsing with line
// context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gene table parse error at line %d: %s", e.Line, e.Message)
}
