package export

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/order"
)

// TabularFile is the default tabular import file name.
const TabularFile = "citycreek_orders.csv"

// TabularColumns is the tabular import header.
var TabularColumns = []string{
	"AR Account", "Customer: Job", "Date", "Sales Tax", "Number", "Class",
	"Item", "Description", "Quantity", "Rate", "Amount", "Taxable",
}

// TabularRow is one row of the tabular import.
type TabularRow struct {
	ARAccount   string
	Customer    string
	Date        string
	SalesTax    string
	Number      int64
	Class       string
	Item        string
	Description string
	Quantity    string
	Rate        string
	Amount      string
	Taxable     string
}

// TabularOptions configures the tabular rows.
type TabularOptions struct {
	// Account fills the "AR Account" column.
	Account string

	// SalesTaxItem fills "Sales Tax" on every row of a taxable order.
	SalesTaxItem string
}

// Tabular writes the tabular import CSV.
type Tabular struct {
	path     string
	opts     TabularOptions
	workbook *Workbook
	log      *zap.Logger
}

// NewTabular creates a tabular exporter writing to dir/fileName. When
// workbook is non-nil the same rows are appended to it.
func NewTabular(dir, fileName string, opts TabularOptions, workbook *Workbook, log *zap.Logger) *Tabular {
	if log == nil {
		log = zap.NewNop()
	}
	if fileName == "" {
		fileName = TabularFile
	}
	if opts.Account == "" {
		opts.Account = "Accounts Receivable"
	}
	return &Tabular{
		path:     filepath.Join(dir, fileName),
		opts:     opts,
		workbook: workbook,
		log:      log,
	}
}

// Path returns the file the exporter writes to.
func (t *Tabular) Path() string {
	return t.path
}

// Rows builds the rows for o: one per line plus the PO or payment line.
// The order is not modified.
func (t *Tabular) Rows(o *order.Order) []TabularRow {
	lines := make([]order.Line, 0, len(o.Lines)+1)
	lines = append(lines, o.Lines...)
	lines = append(lines, o.SettlementLine())

	customerName := ""
	if o.Customer != nil {
		customerName = o.Customer.CustomerName()
	}
	salesTax := ""
	if o.IsTaxable() {
		salesTax = t.opts.SalesTaxItem
	}

	rows := make([]TabularRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, TabularRow{
			ARAccount:   t.opts.Account,
			Customer:    customerName,
			Date:        o.Date,
			SalesTax:    salesTax,
			Number:      o.ID,
			Item:        l.ProductCode,
			Description: l.ProductName,
			Quantity:    l.Quantity,
			Rate:        money(l.UnitPrice.Abs()),
			Amount:      money(l.TotalPrice.Abs()),
		})
	}
	return rows
}

// Export appends the rows of every order.
func (t *Tabular) Export(orders []*order.Order) (Result, error) {
	w := newRowWriter(',')
	res := Result{Path: t.path}

	var all []TabularRow
	for _, o := range orders {
		rows := t.Rows(o)
		for _, r := range rows {
			writeTabularRow(w, r)
		}
		all = append(all, rows...)
		res.OrderIDs = append(res.OrderIDs, o.ID)
	}

	created, err := appendWithHeader(t.path, headerLine(",", TabularColumns...), w.data())
	if err != nil {
		return res, err
	}
	res.Rows = w.rows
	res.Created = created

	t.log.Info("tabular export written",
		zap.String("file", t.path),
		zap.Int("rows", res.Rows))

	if t.workbook != nil {
		if err := t.workbook.Append(all); err != nil {
			return res, err
		}
		t.log.Info("tabular workbook written", zap.String("file", t.workbook.Path()))
	}

	return res, nil
}

func writeTabularRow(w *rowWriter, r TabularRow) {
	w.text(r.ARAccount)
	w.text(r.Customer)
	w.text(r.Date)
	w.text(r.SalesTax)
	w.number(r.Number)
	w.text(r.Class)
	w.text(r.Item)
	w.text(r.Description)
	w.raw(r.Quantity)
	w.raw(r.Rate)
	w.raw(r.Amount)
	w.text(r.Taxable)
	w.end()
}
