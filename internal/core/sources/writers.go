package sources

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

// ExportSheet is the sheet name of exported workbooks.
const ExportSheet = "Sheet"

func init() {
	core.RegisterWriter(core.WriterDefinition{
		Format:      "xlsx",
		Extension:   ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Write:       writeXLSX,
	})
	core.RegisterWriter(core.WriterDefinition{
		Format:      "csv",
		Extension:   ".csv",
		ContentType: "text/csv; charset=utf-8",
		Write:       writeCSV,
	})
}

// writeXLSX writes a single-sheet workbook: header row then data rows, all
// cells as text, no index column.
func writeXLSX(w io.Writer, t *core.ExportTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(ExportSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	if err := writeXLSXRow(sw, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeXLSXRow(sw, i+2, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(sw *excelize.StreamWriter, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func writeCSV(w io.Writer, t *core.ExportTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
