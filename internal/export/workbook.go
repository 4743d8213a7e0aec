// Package export renders staged records as a spreadsheet workbook.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
)

// ErrNoRecords is returned when there is nothing to write.
var ErrNoRecords = errors.New("no records found for the selected statuses")

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns is the header row of every sheet.
var Columns = []string{"name", "website", "status", "added_by"}

// WriteWorkbook writes one sheet per group, in group order, to w.
func WriteWorkbook(w io.Writer, groups []core.ExportGroup) error {
	if len(groups) == 0 {
		return ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, g := range groups {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, g.SheetName); err != nil {
				return fmt.Errorf("rename sheet %s: %w", g.SheetName, err)
			}
		} else if _, err := f.NewSheet(g.SheetName); err != nil {
			return fmt.Errorf("create sheet %s: %w", g.SheetName, err)
		}
		if err := writeSheet(f, g); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, g core.ExportGroup) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(g.SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", g.SheetName, err)
	}

	for i, rec := range g.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Name, rec.Website, string(rec.Status), rec.SubmittedBy}
		if err := f.SetSheetRow(g.SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, g.SheetName, err)
		}
	}
	return nil
}

// FileName returns the download name for an export produced at ts.
func FileName(ts string) string {
	return "staging_export_" + ts + ".xlsx"
}
