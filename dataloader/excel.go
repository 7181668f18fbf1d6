package dataloader

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Excel loads one sheet of an xlsx workbook. The first row is the header;
// every remaining row is one measurement.
type Excel struct {
	Path string
	// Sheet to read; empty means the workbook's first sheet.
	Sheet string
	// Target column heading; empty means the last column.
	Target string
}

func (e *Excel) ID() string {
	return filepath.Base(e.Path)
}

func (e *Excel) Load() (*mlpe.Table, error) {
	f, err := excelize.OpenFile(e.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening workbook %s", e.Path)
	}
	defer f.Close()

	sheet := e.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) < 2 {
		return nil, errs.InvalidInput{Reason: "dataloader: sheet " + sheet + " has no data rows"}
	}
	return buildTable(rows[0], rows[1:], e.Target)
}
