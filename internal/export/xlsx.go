// Package export writes pantry views as spreadsheets.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/ukydev/pantry-finder/internal/store"
)

// SheetName is the worksheet holding the exported pantries.
const SheetName = "Pantries"

var baseHeaders = []interface{}{
	"Organization", "Address", "City", "Days", "Hours", "Phone",
	"Prerequisites", "Info", "Latitude", "Longitude",
}

// WriteXLSX writes the derived view of snap, in presentation order, as an XLSX
// workbook. A distance column in meters is added when the view is ranked.
func WriteXLSX(w io.Writer, snap store.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	ranked := snap.EffectiveSort == store.Nearest && snap.Distances != nil
	headers := baseHeaders
	if ranked {
		headers = append(append([]interface{}{}, baseHeaders...), "Distance (m)")
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, p := range snap.Derived {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.Organizations, p.Address, p.City, p.Days, p.Hours, p.Phone,
			p.Prereq, p.Info, finite(p.Latitude), finite(p.Longitude),
		}
		if ranked {
			// Unrankable rows leave the distance cell blank.
			if d, ok := snap.DistanceAt(i); ok {
				row = append(row, math.Round(d))
			} else {
				row = append(row, nil)
			}
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// finite leaves NaN and infinite coordinates as blank cells.
func finite(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
