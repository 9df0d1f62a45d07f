// Package dataset reads, writes, splits and generates labeled message
// collections stored as CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/zpam/nbspam/pkg/learning"
	"github.com/zpam/nbspam/pkg/textproc"
)

// Record is one labeled message
type Record struct {
	ID      string
	Message string
	Label   learning.Label
}

// Column names accepted in the header row. The first name of each pair is
// what WriteCSV emits.
var (
	messageColumns = []string{"mensaje", "message"}
	labelColumns   = []string{"etiqueta", "label"}
	idColumns      = []string{"id"}
)

// LoadCSV reads a dataset file
func LoadCSV(path string, log *slog.Logger) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, log)
}

// ReadCSV parses CSV with a header naming the message and label columns.
// Rows whose label is neither spam nor ham are skipped with a warning.
func ReadCSV(r io.Reader, log *slog.Logger) ([]Record, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: dataset is empty", learning.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	msgCol := columnIndex(header, messageColumns)
	labelCol := columnIndex(header, labelColumns)
	idCol := columnIndex(header, idColumns)
	if msgCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: dataset header %v lacks message and label columns",
			learning.ErrInvalidArgument, header)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		if msgCol >= len(row) || labelCol >= len(row) {
			log.Warn("Skipping short dataset row", "line", line, "fields", len(row))
			continue
		}

		label, err := learning.ParseLabel(row[labelCol])
		if err != nil {
			log.Warn("Skipping row with invalid label",
				"line", line, "label", row[labelCol], "message", preview(row[msgCol]))
			continue
		}

		rec := Record{
			ID:      strconv.Itoa(line - 1),
			Message: strings.TrimSpace(row[msgCol]),
			Label:   label,
		}
		if idCol >= 0 && idCol < len(row) {
			rec.ID = row[idCol]
		}
		records = append(records, rec)
	}

	log.Debug("Dataset loaded", "records", len(records))
	return records, nil
}

func columnIndex(header, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if lo.Contains(names, h) {
			return i
		}
	}
	return -1
}

func preview(s string) string {
	const limit = 50
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// WriteCSV writes records with an id,mensaje,etiqueta header
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{idColumns[0], messageColumns[0], labelColumns[0]}); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write([]string{rec.ID, rec.Message, rec.Label.String()}); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes records to path
func SaveCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Split shuffles records with a source seeded by seed and cuts them at
// int(len*trainRatio). The input slice is not modified.
func Split(records []Record, trainRatio float64, seed int64) (train, test []Record, err error) {
	if !(trainRatio > 0 && trainRatio < 1) {
		return nil, nil, fmt.Errorf("%w: train ratio must be in (0, 1), got %v",
			learning.ErrInvalidArgument, trainRatio)
	}

	shuffled := append([]Record(nil), records...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainRatio)
	return shuffled[:cut], shuffled[cut:], nil
}

// Messages returns the message text of each record
func Messages(records []Record) []string {
	return lo.Map(records, func(r Record, _ int) string { return r.Message })
}

// Examples preprocesses each record into a labeled token sequence
func Examples(records []Record, pre *textproc.Preprocessor) []learning.Example {
	return lo.Map(records, func(r Record, _ int) learning.Example {
		return learning.Example{Tokens: pre.Preprocess(r.Message), Label: r.Label}
	})
}

// Labels returns the label of each record
func Labels(records []Record) []learning.Label {
	return lo.Map(records, func(r Record, _ int) learning.Label { return r.Label })
}
