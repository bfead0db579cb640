package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/citycreek/order-fulfillment/pkg/utils"
)

// WorkbookSheet is the sheet the tabular rows are appended to.
const WorkbookSheet = "Orders"

// Workbook appends tabular rows to an .xlsx file.
type Workbook struct {
	path string
}

// NewWorkbook creates a workbook writer for dir/fileName.
func NewWorkbook(dir, fileName string) *Workbook {
	return &Workbook{path: filepath.Join(dir, fileName)}
}

// Path returns the workbook file.
func (w *Workbook) Path() string {
	return w.path
}

// Append adds rows below the existing ones. A new workbook, or a workbook
// missing the sheet, gets the header first.
//
// RETURNS:
//   - An error if the workbook cannot be opened, written or saved.
func (w *Workbook) Append(rows []TabularRow) error {
	if err := utils.EnsureDir(filepath.Dir(w.path)); err != nil {
		return err
	}

	var f *excelize.File
	if utils.FileExists(w.path) {
		opened, err := excelize.OpenFile(w.path)
		if err != nil {
			return fmt.Errorf("failed to open workbook: %w", err)
		}
		f = opened
	} else {
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheet); err != nil {
			f.Close()
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(WorkbookSheet)
	if err != nil {
		return fmt.Errorf("failed to find sheet: %w", err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(WorkbookSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
	}

	existing, err := f.GetRows(WorkbookSheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	next := len(existing) + 1

	if next == 1 {
		header := make([]interface{}, len(TabularColumns))
		for i, c := range TabularColumns {
			header[i] = c
		}
		if err := setRow(f, next, header); err != nil {
			return err
		}
		next++
	}

	for _, r := range rows {
		values := []interface{}{
			r.ARAccount, r.Customer, r.Date, r.SalesTax, r.Number, r.Class,
			r.Item, r.Description, r.Quantity, r.Rate, r.Amount, r.Taxable,
		}
		if err := setRow(f, next, values); err != nil {
			return err
		}
		next++
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(WorkbookSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
