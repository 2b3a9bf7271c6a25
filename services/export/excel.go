package exportsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/kelasi/core/progress"
	"github.com/trezcool/kelasi/core/student"
)

const progressSheet = "Progress"

var progressHeader = []string{"Course", "Percentage", "Recorded At (UTC)"}

// WriteProgressWorkbook writes an .xlsx workbook with one row per progress
// record to w.
func WriteProgressWorkbook(w io.Writer, std student.Student, entries []progress.Progress) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(progressSheet)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(idx)
	if err = f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "removing default sheet")
	}

	for col, title := range progressHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "resolving header cell")
		}
		if err = f.SetCellValue(progressSheet, cell, title); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	for i, prg := range entries {
		row := i + 2
		values := []interface{}{
			prg.CourseName,
			prg.Percentage,
			prg.RecordedAt.UTC().Format("2006-01-02 15:04"),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return errors.Wrap(err, "resolving cell")
			}
			if err = f.SetCellValue(progressSheet, cell, val); err != nil {
				return errors.Wrapf(err, "writing row %d", row)
			}
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Progress history - %s", std.DisplayName),
		Creator: "Kelasi",
	}); err != nil {
		return errors.Wrap(err, "setting doc properties")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
