package peak

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParsePeakFile reads a narrowPeak BED file into a peak list.
// Supports both plain and gzipped (.bed.gz) files.
func ParsePeakFile(path string) ([]*NarrowPeak, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open peak file: %w", err)
	}
	defer file.Close()

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read peak file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek peak file: %w", err)
	}

	var reader io.Reader = file
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ParsePeaks(reader)
}

// ParsePeaks reads narrowPeak records from a reader, one per line.
// Empty lines and track/browser/comment lines are skipped.
func ParsePeaks(r io.Reader) ([]*NarrowPeak, error) {
	var peaks []*NarrowPeak

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		p := NewNarrowPeak()
		if err := p.ParseEntry(line); err != nil {
			return nil, &ParseError{Line: lineNumber, Message: err.Error()}
		}
		peaks = append(peaks, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read peak file: %w", err)
	}

	return peaks, nil
}

// ParseError represents an error during peak file parsing with line
// context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("peak parse error at line %d: %s", e.Line, e.Message)
}
