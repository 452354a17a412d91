package export

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/c3r4h/dptkp/internal/service"
)

// SheetName is the worksheet the XLSX export writes.
const SheetName = "Locations"

var headers = []any{
	"ID", "Name", "Category", "Lat", "Lng", "Open", "Close",
	"Tubruk", "Hot Americano", "Indoor AC", "Smoking", "Car", "Motor",
	"Distance (km)", "Google Maps",
}

// WriteXLSX writes items as a single-sheet workbook to w.
func WriteXLSX(w io.Writer, items []service.Ranked) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var distance any
		if it.DistanceKm != nil {
			distance = *it.DistanceKm
		}
		row := []any{
			it.ID, it.Name, strings.Join(it.Category, ", "), it.Lat, it.Lng,
			it.OpenHours, it.CloseHours, it.TubrukPrice(), it.HotCoffee, it.AC,
			it.Smoking, it.Parking.Car, it.Parking.Motor, distance, it.GMaps,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
