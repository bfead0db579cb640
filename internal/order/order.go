// =============================================================================
// Order Fulfillment - Order Module
// =============================================================================
//
// This module holds the typed order model built from the store's order
// records, and the derived fields the exporters print:
//   - Display and customer names
//   - Five-line postal addresses
//   - Shipping and payment method labels
//   - Taxability
//
// Orders are built once by the Parser. Reconciliation attaches the customer
// and the shipping line; after that an order is read-only.
//
// =============================================================================

package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/customer"
	"github.com/citycreek/order-fulfillment/internal/types"
)

// XMLColumns are the order columns requested from the store.
const XMLColumns = "o.OrderID,o.CustomerID,o.PONum,o.OrderNotes,o.OrderDate,o.OrderStatus," +
	"o.PaymentAmount,o.PaymentMethodID,o.SalesTax1,o.ShipFirstName,o.ShipLastName,o.ShipCompanyName," +
	"o.ShippingMethodID,o.TotalShippingCost,o.ShipAddress1,o.ShipAddress2,o.ShipCity,o.ShipState," +
	"o.ShipPostalCode,o.ShipCountry,o.BillingFirstName,o.BillingLastName,o.BillingCompanyName," +
	"o.BillingPhoneNumber,o.BillingAddress1,o.BillingAddress2,o.BillingCity,o.BillingState," +
	"o.BillingPostalCode,o.BillingCountry"

// DomesticCountry is printed as an empty country line.
const DomesticCountry = "United States"

// AddressLines is the number of lines an address is folded into.
const AddressLines = 5

var (
	// ErrMissingOrderID is returned for an order record without an OrderID.
	ErrMissingOrderID = errors.New("order record has no OrderID")

	// ErrInvalidOrderID is returned for a non-numeric OrderID.
	ErrInvalidOrderID = errors.New("order record has a non-numeric OrderID")

	// ErrInvalidAmount is returned for a money field that is not a number.
	ErrInvalidAmount = errors.New("invalid amount")
)

// =============================================================================
// ADDRESS
// =============================================================================

// Address is a ship-to or bill-to block.
type Address struct {
	FirstName   string
	LastName    string
	CompanyName string
	Address1    string
	Address2    string
	City        string
	State       string
	PostalCode  string
	Country     string
	PhoneNumber string
}

// FirstLastName returns "first last" trimmed.
func (a Address) FirstLastName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CityStateZip returns "City, State Zip", or "" when all three are blank.
func (a Address) CityStateZip() string {
	city := strings.TrimSpace(a.City)
	stateZip := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.PostalCode))
	switch {
	case city == "" && stateZip == "":
		return ""
	case city == "":
		return stateZip
	case stateZip == "":
		return city
	default:
		return city + ", " + stateZip
	}
}

// Lines folds the address into AddressLines lines: the non-empty values of
// name, company, address 1, address 2, city/state/zip and country, in that
// order. Missing lines are blank. The second result reports whether a line
// had to be dropped.
func (a Address) Lines() ([AddressLines]string, bool) {
	var out [AddressLines]string
	candidates := []string{
		a.FirstLastName(),
		a.CompanyName,
		a.Address1,
		a.Address2,
		a.CityStateZip(),
		a.Country,
	}

	n := 0
	overflow := false
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if n == AddressLines {
			overflow = true
			break
		}
		out[n] = c
		n++
	}
	return out, overflow
}

// =============================================================================
// ORDER
// =============================================================================

// Order is one store order and its lines.
type Order struct {
	ID         int64
	CustomerID string
	PONum      string
	Notes      string
	Date       string
	Status     string

	PaymentAmount     decimal.Decimal
	PaymentMethodID   string
	PaymentMethod     string
	SalesTax          decimal.Decimal
	TotalShippingCost decimal.Decimal
	ShippingMethodID  string
	ShipMethod        string

	Ship Address
	Bill Address

	Lines []Line

	// Customer is set by reconciliation; nil marks an unmatched order.
	Customer *customer.Customer
}

// Name is the order's display name: the bill-to company or bill-to name,
// followed by the order ID.
func (o *Order) Name() string {
	return fmt.Sprintf("%s %d", o.BillName(), o.ID)
}

// BillName is the bill-to company when present, else the bill-to name.
func (o *Order) BillName() string {
	if strings.TrimSpace(o.Bill.CompanyName) != "" {
		return o.Bill.CompanyName
	}
	return o.Bill.FirstLastName()
}

// IsCancelled reports whether the order status is "cancelled".
func (o *Order) IsCancelled() bool {
	return strings.EqualFold(strings.TrimSpace(o.Status), "cancelled")
}

// IsTaxable reports whether sales tax was charged.
func (o *Order) IsTaxable() bool {
	return o.SalesTax.GreaterThan(decimal.Zero)
}

// IsPurchaseOrder reports whether the order carries a PO number.
func (o *Order) IsPurchaseOrder() bool {
	return strings.TrimSpace(o.PONum) != ""
}

// HasShippingLine reports whether a shipping line was already added.
func (o *Order) HasShippingLine() bool {
	for _, l := range o.Lines {
		if l.Kind == KindShipping {
			return true
		}
	}
	return false
}

// EmailAddress returns the associated customer's email, or "".
func (o *Order) EmailAddress() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.EmailAddress
}

// SettlementLine returns the synthetic line added to the tabular export:
// the PO line for purchase orders, the payment line otherwise.
func (o *Order) SettlementLine() Line {
	if o.IsPurchaseOrder() {
		return NewPurchaseOrderLine(o.PONum)
	}
	return NewPaymentLine(o.PaymentMethod, o.PaymentAmount)
}

// =============================================================================
// PARSER
// =============================================================================

// Parser builds orders from parsed order records.
type Parser struct {
	methods *MethodTable
	log     *zap.Logger
}

// NewParser creates a Parser resolving shipping codes through methods.
func NewParser(methods *MethodTable, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if methods == nil {
		methods = NewMethodTable(nil, log)
	}
	return &Parser{methods: methods, log: log}
}

// ParseAll builds an order from every record. Invalid records are dropped
// and logged at debug level; the remaining orders keep their input order.
func (p *Parser) ParseAll(recs []types.OrderRecord) []*Order {
	orders := make([]*Order, 0, len(recs))
	for i, rec := range recs {
		o, err := p.Parse(rec)
		if err != nil {
			p.log.Debug("dropping order record",
				zap.Int("record", i),
				zap.String("order_id", rec.Header.Get("OrderID")),
				zap.Error(err))
			continue
		}
		orders = append(orders, o)
	}
	return orders
}

// Parse builds one order.
//
// PARAMETERS:
//   - rec: The order-level fields and the order-detail records.
//
// RETURNS:
//   - The order with its product lines in document order.
//   - ErrMissingOrderID, ErrInvalidOrderID or ErrInvalidAmount.
func (p *Parser) Parse(rec types.OrderRecord) (*Order, error) {
	h := rec.Header

	rawID := strings.TrimSpace(h.Get("OrderID"))
	if rawID == "" {
		return nil, ErrMissingOrderID
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderID, rawID)
	}

	o := &Order{
		ID:               id,
		CustomerID:       strings.TrimSpace(h.Get("CustomerID")),
		PONum:            h.Get("PONum"),
		Notes:            h.Get("OrderNotes"),
		Date:             h.Get("OrderDate"),
		Status:           h.Get("OrderStatus"),
		PaymentMethodID:  strings.TrimSpace(h.Get("PaymentMethodID")),
		ShippingMethodID: strings.TrimSpace(h.Get("ShippingMethodID")),
		Ship:             addressFrom(h, "Ship"),
		Bill:             addressFrom(h, "Billing"),
	}

	if o.PaymentAmount, err = parseAmount(h.Get("PaymentAmount")); err != nil {
		return nil, fmt.Errorf("PaymentAmount: %w", err)
	}
	if o.SalesTax, err = parseAmount(h.FirstOf("SalesTax1", "SalesTax")); err != nil {
		return nil, fmt.Errorf("SalesTax: %w", err)
	}
	if o.TotalShippingCost, err = parseAmount(h.Get("TotalShippingCost")); err != nil {
		return nil, fmt.Errorf("TotalShippingCost: %w", err)
	}

	o.ShipMethod = p.methods.Resolve(o.ShippingMethodID)

	if o.PaymentMethodID != "" {
		label, ok := PaymentMethodLabel(o.PaymentMethodID)
		if !ok {
			p.log.Warn("unknown payment method id",
				zap.Int64("order_id", o.ID),
				zap.String("payment_method_id", o.PaymentMethodID))
		}
		o.PaymentMethod = label
	}

	for _, lr := range rec.Lines {
		line, err := lineFrom(lr)
		if err != nil {
			return nil, fmt.Errorf("order %d line %q: %w", o.ID, lr.Get("ProductCode"), err)
		}
		o.Lines = append(o.Lines, line)
	}

	return o, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// addressFrom reads the address fields sharing prefix ("Ship" or "Billing").
func addressFrom(rec types.Record, prefix string) Address {
	a := Address{
		FirstName:   rec.Get(prefix + "FirstName"),
		LastName:    rec.Get(prefix + "LastName"),
		CompanyName: rec.Get(prefix + "CompanyName"),
		Address1:    rec.Get(prefix + "Address1"),
		Address2:    rec.Get(prefix + "Address2"),
		City:        rec.Get(prefix + "City"),
		State:       rec.Get(prefix + "State"),
		PostalCode:  rec.Get(prefix + "PostalCode"),
		Country:     rec.Get(prefix + "Country"),
		PhoneNumber: rec.Get(prefix + "PhoneNumber"),
	}
	if strings.TrimSpace(a.Country) == DomesticCountry {
		a.Country = ""
	}
	return a
}

func lineFrom(rec types.Record) (Line, error) {
	unit, err := parseAmount(rec.Get("ProductPrice"))
	if err != nil {
		return Line{}, fmt.Errorf("ProductPrice: %w", err)
	}
	total, err := parseAmount(rec.Get("TotalPrice"))
	if err != nil {
		return Line{}, fmt.Errorf("TotalPrice: %w", err)
	}
	return Line{
		Kind:           KindProduct,
		ProductCode:    rec.Get("ProductCode"),
		ProductName:    rec.Get("ProductName"),
		UnitPrice:      unit,
		Quantity:       strings.TrimSpace(rec.Get("Quantity")),
		TotalPrice:     total,
		TaxableProduct: rec.Get("TaxableProduct"),
	}, nil
}

// parseAmount parses a money value. Blank is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
