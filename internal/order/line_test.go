package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExclusionSet(t *testing.T) {
	set := NewExclusionSet(" shipping, GiftCard ,,")

	tests := []struct {
		name string
		line Line
		want bool
	}{
		{"shipped product", Line{ProductCode: "WIDGET", Quantity: "2"}, false},
		{"excluded code any case", Line{ProductCode: "giftcard", Quantity: "1"}, true},
		{"excluded shipping", NewShippingLine("UPS Ground", decimal.NewFromInt(5)), true},
		{"zero quantity", Line{ProductCode: "WIDGET", Quantity: "0"}, true},
		{"negative quantity", Line{ProductCode: "WIDGET", Quantity: "-1"}, true},
		{"blank quantity", Line{ProductCode: "WIDGET"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Excludes(tt.line))
		})
	}
	assert.Len(t, set, 2)
}

func TestSameLines(t *testing.T) {
	a := []Line{{ProductCode: "A", Quantity: "1"}, {ProductCode: "B", Quantity: "2", ProductName: "x"}}
	b := []Line{{ProductCode: "A", Quantity: "1"}, {ProductCode: "B", Quantity: "2", ProductName: "y"}}

	assert.True(t, SameLines(a, b))
	assert.False(t, SameLines(a, b[:1]))
	assert.False(t, SameLines(a, []Line{b[1], b[0]}))
	assert.False(t, SameLines(a, []Line{{ProductCode: "A", Quantity: "1"}, {ProductCode: "B", Quantity: "3"}}))
	assert.True(t, SameLines(nil, nil))
}

func TestNewShippingLine(t *testing.T) {
	cost := decimal.RequireFromString("7.50")
	l := NewShippingLine("UPS Ground", cost)

	assert.Equal(t, KindShipping, l.Kind)
	assert.Equal(t, ShippingCode, l.ProductCode)
	assert.Equal(t, "UPS Ground", l.ProductName)
	assert.Equal(t, "1", l.Quantity)
	assert.True(t, l.UnitPrice.Equal(cost))
	assert.True(t, l.TotalPrice.Equal(cost))
}

func TestNewPaymentLineIgnoresNonPositive(t *testing.T) {
	l := NewPaymentLine("Visa", decimal.NewFromInt(-3))
	assert.True(t, l.TotalPrice.IsZero())
}

func TestParseMethodMap(t *testing.T) {
	m, err := ParseMethodMap("108=Ground&999= Freight &")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"108": "Ground", "999": "Freight"}, m)

	_, err = ParseMethodMap("108")
	assert.Error(t, err)

	table := NewMethodTable(m, nil)
	assert.Equal(t, "Ground", table.Resolve("108"))
	assert.Equal(t, "Freight", table.Resolve(" 999 "))
	assert.Equal(t, "UPS Standard", table.Resolve("109"))
	assert.Equal(t, "", table.Resolve(""))
}

func TestPaymentMethodLabel(t *testing.T) {
	tests := map[string]string{
		"5": "Visa", "6": "MasterCard", "7": "American Express", "8": "Discover",
		"12": "PayPal Express Upgrade", "13": "Purchase Order",
	}
	for code, want := range tests {
		got, ok := PaymentMethodLabel(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got)
	}

	got, ok := PaymentMethodLabel("3")
	assert.False(t, ok)
	assert.Equal(t, "", got)
}
