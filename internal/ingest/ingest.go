// Package ingest reads raw notes for batch runs from JSON Lines, JSON arrays
// or line-fragment CSV exports.
package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// maxLineBytes bounds one JSON Lines record.
const maxLineBytes = 16 << 20

var ErrUnsupportedFormat = errors.New("unsupported input format")

// ReadJSONL reads one RawNote per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]domain.RawNote, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var notes []domain.RawNote
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(strings.TrimSpace(string(b))) == 0 {
			continue
		}
		var n domain.RawNote
		if err := json.Unmarshal(b, &n); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		notes = append(notes, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return notes, nil
}

// ReadJSON reads a JSON array of RawNote.
func ReadJSON(r io.Reader) ([]domain.RawNote, error) {
	var notes []domain.RawNote
	if err := json.NewDecoder(r).Decode(&notes); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	return notes, nil
}

// ReadFile picks a reader by extension: .jsonl/.ndjson, .json or .csv.
// CSV files use DefaultCSVOptions.
func ReadFile(path string) ([]domain.RawNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return ReadJSONL(f)
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f, DefaultCSVOptions())
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}
