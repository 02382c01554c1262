package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

func init() {
	core.RegisterSource(core.SourceDefinition{
		Kind:       "csv",
		Label:      "CSV file",
		Extensions: []string{".csv"},
		Open:       openCSV,
	})
}

// csvSource reads a comma-separated file. A UTF-8 BOM is skipped and invalid
// UTF-8 is replaced; ragged rows are accepted.
type csvSource struct {
	fileSource
}

func openCSV(spec core.SourceSpec) (core.Source, error) {
	fs, err := newFileSource("csv", spec.Location)
	if err != nil {
		return nil, err
	}
	return &csvSource{fileSource: fs}, nil
}

func (s *csvSource) Read(ctx context.Context) (*core.RawTable, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return readCSV(ctx, core.WrapForStreaming(f, size))
}

func readCSV(ctx context.Context, r io.Reader) (*core.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &core.RawTable{}
	haveHeader := false
	for n := 0; ; n++ {
		if err := checkContext(ctx, n); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		if isEmptyRow(record) {
			continue
		}
		if !haveHeader {
			table.Columns = record
			haveHeader = true
			continue
		}
		table.Rows = append(table.Rows, toAny(record))
	}

	return table, nil
}
