package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

func init() {
	core.RegisterSource(core.SourceDefinition{
		Kind:       "xlsx",
		Label:      "Excel workbook",
		Extensions: []string{".xlsx", ".xlsm"},
		Open:       openXLSX,
	})
}

// xlsxSource reads one sheet of a workbook. The first non-empty row is the
// header; fully blank rows are skipped.
type xlsxSource struct {
	fileSource
	sheet string
}

func openXLSX(spec core.SourceSpec) (core.Source, error) {
	fs, err := newFileSource("xlsx", spec.Location)
	if err != nil {
		return nil, err
	}
	if spec.Sheet != "" {
		fs.handle += "#" + spec.Sheet
	}
	return &xlsxSource{fileSource: fs, sheet: spec.Sheet}, nil
}

func (s *xlsxSource) Read(ctx context.Context) (*core.RawTable, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no sheets found in workbook")
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("open rows of sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	table := &core.RawTable{}
	haveHeader := false
	for n := 0; rows.Next(); n++ {
		if err := checkContext(ctx, n); err != nil {
			return nil, err
		}

		row, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row in sheet %s: %w", sheet, err)
		}
		if isEmptyRow(row) {
			continue
		}
		if !haveHeader {
			table.Columns = row
			haveHeader = true
			continue
		}
		table.Rows = append(table.Rows, toAny(row))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	return table, nil
}
