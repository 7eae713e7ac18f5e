package profiles

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// csvHeader is the column order export_sample.csv used in the original
// implementation (original_source/backend/storage.py).
var csvHeader = []string{"Trigger", "Output"}

// EncodeCSV renders a trigger set as "Trigger,Output" rows. Fields are
// quoted only where encoding/csv needs to (commas, quotes, newlines,
// leading spaces); row order follows map iteration and is not defined.
func EncodeCSV(triggers map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	for trigger, output := range triggers {
		if err := w.Write([]string{trigger, output}); err != nil {
			return nil, errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses rows with a Trigger/Output (or legacy Hotkey/Text)
// header into a trigger set, skipping rows missing either field — the
// same tolerant column-aliasing the original import_hotkeys_from_csv did.
func DecodeCSV(data []byte) (map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	triggerCol, outputCol := -1, -1
	for i, col := range header {
		switch col {
		case "Trigger", "trigger", "Hotkey":
			if triggerCol == -1 {
				triggerCol = i
			}
		case "Output", "output", "Text":
			if outputCol == -1 {
				outputCol = i
			}
		}
	}
	if triggerCol == -1 || outputCol == -1 {
		return nil, errors.New("csv: missing Trigger/Output columns")
	}

	out := make(map[string]string)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv row")
		}
		if triggerCol >= len(row) || outputCol >= len(row) {
			continue
		}
		trigger, output := row[triggerCol], row[outputCol]
		if trigger == "" || output == "" {
			continue
		}
		out[trigger] = output
	}
	return out, nil
}
