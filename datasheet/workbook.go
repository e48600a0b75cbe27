package datasheet

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
)

// Cell-level operations. Legacy .xls workbooks are listed and copied
// like any other library file but cannot be edited in place.

func (l *Library) editablePath(name string) (string, error) {
	path, err := l.Path(name)
	if err != nil {
		return "", err
	}
	if strings.ToLower(filepath.Ext(name)) == ".xls" {
		return "", errors.NewInvalidRequestError(
			"%q is a legacy workbook; convert it to .xlsx to edit cells", name)
	}
	return path, nil
}

// SheetNames lists the worksheets of a library workbook.
func (l *Library) SheetNames(name string) ([]string, error) {
	path, err := l.editablePath(name)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", name)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadCell returns the displayed value of one cell, e.g. ("Sheet1", "B2").
func (l *Library) ReadCell(name, sheet, cell string) (string, error) {
	path, err := l.editablePath(name)
	if err != nil {
		return "", err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open workbook %s", name)
	}
	defer f.Close()

	value, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s!%s in %s", sheet, cell, name)
	}
	return value, nil
}

// WriteCell sets one cell value and saves the workbook. This is the
// paste target for live property values: the value lands in the
// chosen cell, the unit (when given) in the cell one column to the
// right.
func (l *Library) WriteCell(name, sheet, cell, value, unit string) error {
	path, err := l.editablePath(name)
	if err != nil {
		return err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open workbook %s", name)
	}
	defer f.Close()

	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return errors.Wrapf(err, "failed to write %s!%s in %s", sheet, cell, name)
	}

	if unit != "" {
		col, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return errors.Wrapf(err, "invalid cell reference %q", cell)
		}
		unitCell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return errors.Wrap(err, "failed to compute unit cell")
		}
		if err := f.SetCellValue(sheet, unitCell, unit); err != nil {
			return errors.Wrapf(err, "failed to write unit to %s!%s in %s", sheet, unitCell, name)
		}
	}

	if err := f.Save(); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", name)
	}
	logger.Debugw("wrote datasheet cell",
		"file", name, "sheet", sheet, "cell", cell, "unit", unit != "")
	return nil
}

// NewWorkbook creates a blank .xlsx workbook in the library. Fails
// with ErrFileExists unless overwrite is set.
func (l *Library) NewWorkbook(name string, overwrite bool) error {
	path, err := l.editablePath(name)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, statErr := os.Stat(path); statErr == nil {
			return errors.Wrapf(errors.ErrFileExists, "datasheet %q", name)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to create workbook %s", name)
	}
	logger.Infow("created blank workbook", "file", name)
	return nil
}
