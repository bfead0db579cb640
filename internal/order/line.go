package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Synthetic line product codes.
const (
	ShippingCode      = "Shipping"
	PurchaseOrderCode = "PONUM"
)

// LineXMLColumns are the order-detail columns requested from the store.
const LineXMLColumns = "od.ProductCode,od.ProductName,od.ProductPrice,od.Quantity,od.TotalPrice"

// Kind identifies the variant of a Line.
type Kind int

const (
	// KindProduct is a line parsed from the order feed.
	KindProduct Kind = iota
	// KindShipping carries the order's shipping method and cost.
	KindShipping
	// KindPayment carries the payment method label and amount.
	KindPayment
	// KindPurchaseOrder carries the PO number.
	KindPurchaseOrder
)

func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindShipping:
		return "shipping"
	case KindPayment:
		return "payment"
	case KindPurchaseOrder:
		return "purchase-order"
	default:
		return "unknown"
	}
}

// Line is one entry of an order. Product lines come from the feed; the other
// kinds are synthesised during reconciliation or export.
type Line struct {
	Kind           Kind
	ProductCode    string
	ProductName    string
	UnitPrice      decimal.Decimal
	Quantity       string
	TotalPrice     decimal.Decimal
	TaxableProduct string
}

// NewShippingLine builds the line carrying the shipping method and cost.
func NewShippingLine(method string, cost decimal.Decimal) Line {
	return Line{
		Kind:        KindShipping,
		ProductCode: ShippingCode,
		ProductName: method,
		UnitPrice:   cost,
		Quantity:    "1",
		TotalPrice:  cost,
	}
}

// NewPaymentLine builds the line carrying the payment method and amount.
// A non-positive amount leaves the total at zero.
func NewPaymentLine(method string, amount decimal.Decimal) Line {
	l := Line{Kind: KindPayment, ProductCode: method, TotalPrice: decimal.Zero}
	if amount.GreaterThan(decimal.Zero) {
		l.TotalPrice = amount
	}
	return l
}

// NewPurchaseOrderLine builds the line carrying the PO number.
func NewPurchaseOrderLine(poNum string) Line {
	return Line{
		Kind:        KindPurchaseOrder,
		ProductCode: PurchaseOrderCode,
		ProductName: poNum,
		TotalPrice:  decimal.Zero,
	}
}

// QuantityValue returns the quantity as an integer, or 0 when it is not one.
func (l Line) QuantityValue() int {
	n, err := strconv.Atoi(strings.TrimSpace(l.Quantity))
	if err != nil {
		return 0
	}
	return n
}

// Matches reports whether l and other have the same product code and quantity.
func (l Line) Matches(other Line) bool {
	return l.ProductCode == other.ProductCode && l.Quantity == other.Quantity
}

// SameLines reports whether a and b hold matching lines in the same order.
func SameLines(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Matches(b[i]) {
			return false
		}
	}
	return true
}

// ExclusionSet holds the product codes that are never shipped.
// Codes are compared trimmed and upper-cased.
type ExclusionSet map[string]struct{}

// NewExclusionSet parses a comma separated list of product codes.
func NewExclusionSet(codes string) ExclusionSet {
	set := make(ExclusionSet)
	for _, code := range strings.Split(codes, ",") {
		code = normalizeCode(code)
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

// Contains reports whether code is excluded.
func (s ExclusionSet) Contains(code string) bool {
	_, ok := s[normalizeCode(code)]
	return ok
}

// Excludes reports whether l must be left out of the shipping export: its
// code is in the set or its quantity is below one.
func (s ExclusionSet) Excludes(l Line) bool {
	return s.Contains(l.ProductCode) || l.QuantityValue() < 1
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
