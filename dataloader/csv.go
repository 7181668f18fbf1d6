package dataloader

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// CSV loads a comma-separated file with a header row.
type CSV struct {
	Path string
	// Target column heading; empty means the last column.
	Target string
	// Comma overrides the field delimiter; zero means ','.
	Comma rune
}

func (c *CSV) ID() string {
	return filepath.Base(c.Path)
}

func (c *CSV) Load() (*mlpe.Table, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", c.Path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", c.Path)
	}
	if len(records) < 2 {
		return nil, errs.InvalidInput{Reason: "dataloader: " + c.Path + " has no data rows"}
	}
	return buildTable(records[0], records[1:], c.Target)
}
