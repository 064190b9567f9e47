package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Entry is one word pair read from an import file.
type Entry struct {
	English   string
	Native    string
	AudioPath string
	Set       string
	// Row is the 1-based record number in the source file, for error messages.
	Row int
}

type jsonEntry struct {
	English   string `json:"english"`
	Native    string `json:"native"`
	Russian   string `json:"russian"`
	AudioPath string `json:"audio_path"`
	Set       string `json:"set"`
}

// ReadJSON decodes an array of {"english", "native"|"russian", "audio_path", "set"} objects.
func ReadJSON(r io.Reader) ([]Entry, error) {
	var raw []jsonEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, item := range raw {
		native := item.Native
		if native == "" {
			native = item.Russian
		}
		entries = append(entries, Entry{
			English:   item.English,
			Native:    native,
			AudioPath: item.AudioPath,
			Set:       item.Set,
			Row:       i + 1,
		})
	}
	return entries, nil
}

// Column headers recognised in the first row of a spreadsheet.
const (
	ColumnEnglish = "english"
	ColumnNative  = "native"
	ColumnSet     = "set"
	ColumnAudio   = "audio"
)

// ReadXLSX reads the first sheet of a workbook. The first row names the columns;
// English and Native are required, Set and Audio are optional.
func ReadXLSX(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColumnEnglish, ColumnNative} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sheet %q: missing %q column", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		entries = append(entries, Entry{
			English:   cell(row, ColumnEnglish),
			Native:    cell(row, ColumnNative),
			AudioPath: cell(row, ColumnAudio),
			Set:       cell(row, ColumnSet),
			Row:       i + 2,
		})
	}
	return entries, nil
}
