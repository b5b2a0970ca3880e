// Package report renders the kit collection log as an Excel workbook.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/apizfit/racekit/internal/collection"
)

// collectionHeader is the column layout of the collection log export.
var collectionHeader = []string{
	"Kit Number",
	"Runner",
	"Bib Number",
	"Collected By",
	"Collection Type",
	"Representative",
	"Representative ID",
	"Relationship",
	"Notes",
	"Collected At",
}

const sheetName = "Kit Collections"

// CollectionLog builds an xlsx workbook from the given collection records
// and returns its bytes.
func CollectionLog(records []collection.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for col, header := range collectionHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("converting coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("setting header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("styling header cell %s: %w", cell, err)
		}
	}

	for i := range records {
		rec := &records[i]
		row := []any{
			rec.KitNumber,
			rec.RunnerName,
			rec.RunnerBibNumber,
			rec.CollectorEmail,
			rec.CollectionType,
			deref(rec.RepresentativeName),
			deref(rec.RepresentativeID),
			deref(rec.Relationship),
			deref(rec.Notes),
			rec.CollectedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("converting coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("setting cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
