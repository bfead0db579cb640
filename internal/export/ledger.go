// =============================================================================
// Order Fulfillment - Ledger Interchange Export
// =============================================================================
//
// Writes the accounting interchange (IIF) file. The file is tab-delimited and
// holds up to four record types:
//   CUST     one per customer, at most once per exporter
//   TRNS     one per order (invoice header)
//   SPL      one per order line
//   ENDTRNS  closes each order
//
// In customers-only mode only CUST records are written, to a separate file.
//
// The CUST NAME is the customer name. The tabular import's "Customer: Job"
// column carries the same value, so both files refer to the same customer.
//
// =============================================================================

package export

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/order"
)

// Ledger file names.
const (
	LedgerOrdersFile    = "citycreek_orders.iif"
	LedgerCustomersFile = "citycreek_customers.iif"
)

// Ledger record headers.
var (
	LedgerCustomerColumns = []string{
		"!CUST", "NAME", "BADDR1", "BADDR2", "BADDR3", "BADDR4", "BADDR5",
		"SADDR1", "SADDR2", "SADDR3", "SADDR4", "SADDR5", "PHONE1", "PHONE2", "FAXNUM",
		"EMAIL", "NOTE", "CONT1", "CONT2", "CTYPE", "TERMS", "TAXABLE", "LIMIT",
		"RESALENUM", "REP", "TAXITEM", "NOTEPAD", "SALUTATION", "COMPANYNAME",
		"FIRSTNAME", "MIDINIT", "LASTNAME",
	}

	LedgerTransactionColumns = []string{
		"!TRNS", "TRNSID", "TRNSTYPE", "DATE", "ACCNT", "NAME", "CLASS", "AMOUNT",
		"DOCNUM", "MEMO", "CLEAR", "TOPRINT", "PONUM", "ADDR1", "ADDR2", "ADDR3",
		"ADDR4", "ADDR5", "SADDR1", "SADDR2", "SADDR3", "SADDR4", "SADDR5", "TERMS", "SHIPVIA",
	}

	LedgerSplitColumns = []string{
		"!SPL", "SPLID", "TRNSTYPE", "DATE", "ACCNT", "NAME", "CLASS", "AMOUNT",
		"DOCNUM", "MEMO", "CLEAR", "QNTY", "PRICE", "INVITEM", "TAXABLE", "EXTRA",
	}

	LedgerEndColumns = []string{"!ENDTRNS"}
)

// LedgerOptions are the fixed account values printed on transactions.
type LedgerOptions struct {
	// IncludeTransactions writes TRNS/SPL/ENDTRNS records after CUST.
	IncludeTransactions bool

	// Account is the receivables account (TRNS ACCNT).
	Account string

	// Class is the transaction class (TRNS CLASS).
	Class string
}

// Ledger writes the interchange file.
type Ledger struct {
	dir  string
	opts LedgerOptions
	log  *zap.Logger

	// customers holds the IDs already written as CUST records.
	customers map[string]bool
}

// NewLedger creates a ledger exporter writing into dir.
func NewLedger(dir string, opts LedgerOptions, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Account == "" {
		opts.Account = "Accounts Receivable"
	}
	if opts.Class == "" {
		opts.Class = "website"
	}
	return &Ledger{
		dir:       dir,
		opts:      opts,
		log:       log,
		customers: make(map[string]bool),
	}
}

// Path returns the file the exporter writes to.
func (l *Ledger) Path() string {
	if l.opts.IncludeTransactions {
		return filepath.Join(l.dir, LedgerOrdersFile)
	}
	return filepath.Join(l.dir, LedgerCustomersFile)
}

// Export appends the records for orders. Customers already written by this
// exporter are not written again.
func (l *Ledger) Export(orders []*order.Order) (Result, error) {
	w := newRowWriter('\t')
	res := Result{Path: l.Path()}

	for _, o := range orders {
		if o.Customer == nil {
			continue
		}

		if !l.customers[o.Customer.ID] {
			l.customers[o.Customer.ID] = true
			l.writeCustomer(w, o)
		} else {
			l.log.Debug("customer already written",
				zap.String("customer", o.Customer.CustomerName()))
		}

		if l.opts.IncludeTransactions {
			l.writeTransaction(w, o)
			for _, line := range o.Lines {
				l.writeSplit(w, o, line)
			}
			w.raw("ENDTRNS")
			w.end()
		}
		res.OrderIDs = append(res.OrderIDs, o.ID)
	}

	created, err := appendWithHeader(res.Path, l.header(), w.data())
	if err != nil {
		return res, err
	}
	res.Rows = w.rows
	res.Created = created

	l.log.Info("ledger export written",
		zap.String("file", res.Path),
		zap.Int("rows", res.Rows))
	return res, nil
}

func (l *Ledger) header() string {
	h := headerLine("\t", LedgerCustomerColumns...)
	if l.opts.IncludeTransactions {
		h += headerLine("\t", LedgerTransactionColumns...)
		h += headerLine("\t", LedgerSplitColumns...)
		h += headerLine("\t", LedgerEndColumns...)
	}
	return h
}

// =============================================================================
// RECORD WRITERS
// =============================================================================

func (l *Ledger) writeCustomer(w *rowWriter, o *order.Order) {
	c := o.Customer
	l.log.Debug("writing customer", zap.String("customer", c.CustomerName()))

	w.raw("CUST")
	w.text(c.CustomerName())
	l.writeAddress(w, o, "billing", o.Bill)
	l.writeAddress(w, o, "shipping", o.Ship)

	// PHONE1 PHONE2 FAXNUM
	w.text(o.Bill.PhoneNumber)
	w.skip()
	w.skip()

	// EMAIL NOTE
	w.text(c.EmailAddress)
	w.skip()

	// CONT1 CONT2 CTYPE TERMS
	w.text(c.FirstLastName())
	w.skip()
	w.skip()
	w.skip()

	if o.IsTaxable() {
		w.raw("Y")
	} else {
		w.raw("N")
	}

	// LIMIT RESALENUM REP TAXITEM NOTEPAD SALUTATION
	for i := 0; i < 6; i++ {
		w.skip()
	}

	w.text(c.CompanyName)
	w.text(c.FirstName)
	w.skip()
	w.text(c.LastName)
	w.end()
}

func (l *Ledger) writeTransaction(w *rowWriter, o *order.Order) {
	w.raw("TRNS")
	w.number(o.ID)
	w.text("INVOICE")
	w.text(o.Date)
	w.text(l.opts.Account)
	w.text(o.Customer.CustomerName())
	w.text(l.opts.Class)
	w.money(o.PaymentAmount)
	w.number(o.ID)
	w.text(o.Name())
	w.text("N")
	w.text("N")
	w.text(o.PONum)
	l.writeAddress(w, o, "billing", o.Bill)
	l.writeAddress(w, o, "shipping", o.Ship)
	w.text(o.PaymentMethod)
	w.text(o.ShipMethod)
	w.end()
}

func (l *Ledger) writeSplit(w *rowWriter, o *order.Order, line order.Line) {
	w.raw("SPL")
	w.skip()
	w.raw("INVOICE")
	w.text(o.Date)
	w.skip()
	w.text(line.ProductName)
	w.skip()
	w.money(line.TotalPrice.Neg())
	w.skip()
	w.text(line.ProductName)
	w.text("N")
	w.raw(line.Quantity)
	w.money(line.UnitPrice)
	w.text(line.ProductCode)
	w.raw(line.TaxableProduct)
	w.skip()
	w.end()
}

// writeAddress writes the five folded address lines, warning on truncation.
func (l *Ledger) writeAddress(w *rowWriter, o *order.Order, kind string, a order.Address) {
	lines, overflow := a.Lines()
	if overflow {
		l.log.Warn("address has more than five lines, truncating",
			zap.Int64("order_id", o.ID),
			zap.String("address", kind))
	}
	for _, line := range lines {
		w.text(line)
	}
}
