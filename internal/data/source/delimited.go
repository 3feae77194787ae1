package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

var FormatErr = errors.New("invalid format")

// Labels maps the string labels of a delimited source to their numeric codes.
type Labels map[string]int

// Name returns the string label for the given code.
func (l Labels) Name(code int) (string, bool) {
	for name, c := range l {
		if c == code {
			return name, true
		}
	}
	return "", false
}

// ReadDelimited reads one record per line.
// Every line holds the numeric features followed by a trailing string label,
// labels are mapped to integer codes in the order they are first seen.
func ReadDelimited(r io.Reader, delim string) ([]*data.Record, Labels, error) {
	if delim == "" {
		delim = ","
	}
	labels := make(Labels)
	records := make([]*data.Record, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	dim := -1
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		tokens := strings.Split(text, delim)
		if len(tokens) < 2 {
			return nil, nil, fmt.Errorf("line %d has no features: %w", line, FormatErr)
		}
		features := make([]float64, len(tokens)-1)
		for i, token := range tokens[:len(tokens)-1] {
			f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d feature %d '%s': %v: %w", line, i, token, err, FormatErr)
			}
			features[i] = f
		}
		if dim < 0 {
			dim = len(features)
		} else if len(features) != dim {
			return nil, nil, fmt.Errorf("line %d has %d features instead of %d: %w", line, len(features), dim, FormatErr)
		}
		name := strings.TrimSpace(tokens[len(tokens)-1])
		code, ok := labels[name]
		if !ok {
			code = len(labels)
			labels[name] = code
		}
		records = append(records, data.NewRecord(code, features...))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("could not read delimited source: %w", err)
	}
	return records, labels, nil
}

// LoadDelimited reads the delimited file at the given path.
func LoadDelimited(path string, delim string) ([]*data.Record, Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open file '%s': %w", path, err)
	}
	defer f.Close()
	records, labels, err := ReadDelimited(f, delim)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load '%s': %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("records", len(records)).
		Int("labels", len(labels)).
		Msg("loaded delimited file")
	return records, labels, nil
}

// LabelToken is the label representation used when exporting records,
// so that external tools treat the label column as categorical.
func LabelToken(label int) string {
	return fmt.Sprintf("class_%d", label)
}

// WriteDelimited writes the records in the delimited format.
// Features are written as returned by Record.Features.
func WriteDelimited(w io.Writer, records []*data.Record, delim string) error {
	if delim == "" {
		delim = ","
	}
	writer := bufio.NewWriter(w)
	for _, r := range records {
		lw := new(strings.Builder)
		for _, f := range r.Features() {
			lw.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
			lw.WriteString(delim)
		}
		lw.WriteString(LabelToken(r.Label))
		if _, err := writer.WriteString(lw.String() + "\n"); err != nil {
			return fmt.Errorf("could not write record: %w", err)
		}
	}
	return writer.Flush()
}

// SaveDelimited writes the records into a file at the given path.
func SaveDelimited(path string, records []*data.Record, delim string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("could not open file '%s': %w", path, err)
	}
	defer f.Close()
	return WriteDelimited(f, records, delim)
}
