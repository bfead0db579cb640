// =============================================================================
// Order Fulfillment - Shipping and Payment Methods
// =============================================================================
//
// The store reports shipping and payment methods as numeric codes. This file
// maps them to the labels printed on the exports.
//
// SHIPPING:
//   A built-in table of known carrier codes, overlaid by the configured
//   "code=label&code=label" map. Unknown codes fall back to the raw code and
//   are logged once per table.
//
// PAYMENT:
//   A fixed switch. Unknown codes map to an empty label.
//
// =============================================================================

package order

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// defaultShippingMethods are the carrier codes known to the store.
var defaultShippingMethods = map[string]string{
	"101": "UPS Next Day Air Early A.M.",
	"102": "UPS Next Day Air",
	"104": "UPS Next Day Air Saver",
	"105": "UPS 2nd Day Air A.M.",
	"106": "UPS 2nd Day Air",
	"107": "UPS 3 Day Select",
	"108": "UPS Ground",
	"109": "UPS Standard",
	"110": "UPS Worldwide Express",
	"111": "UPS Worldwide Express Plus",
	"112": "UPS Worldwide Expedited",
	"113": "UPS World Wide Saver",
	"204": "USPS Parcel",
	"205": "USPS Priority Box",
	"211": "PMI",
	"214": "EMI",
	"501": "US Mail",
	"900": "US Mail",
	"901": "US Mail",
	"502": "UPS",
	"902": "UPS",
	"903": "UPS",
	"904": "UPS",
	"905": "UPS",
	"906": "UPS",
	"907": "UPS",
	"908": "UPS",
	"909": "UPS",
	"910": "UPS",
	"911": "UPS",
	"912": "UPS",
	"913": "UPS",
	"914": "UPS",
	"915": "UPS",
	"916": "UPS",
	"9012": "UPS",
	"917": "US Mail Intl",
	"918": "US Mail Intl",
	"919": "US Mail Intl",
	"920": "US Mail Intl",
	"921": "US Mail Intl",
	"922": "US Mail Intl",
	"923": "US Mail Intl",
	"924": "US Mail Intl",
	"925": "US Mail Intl",
	"926": "US Mail Intl",
	"927": "US Mail Intl",
	"9001": "Priority Mail",
	"9011": "Priority Mail",
}

// =============================================================================
// SHIPPING METHOD TABLE
// =============================================================================

// MethodTable resolves shipping method codes to labels.
type MethodTable struct {
	labels map[string]string
	warned map[string]bool
	log    *zap.Logger
}

// NewMethodTable builds a table from the built-in codes plus overrides.
// Overrides replace built-in labels for the same code.
func NewMethodTable(overrides map[string]string, log *zap.Logger) *MethodTable {
	if log == nil {
		log = zap.NewNop()
	}

	labels := make(map[string]string, len(defaultShippingMethods)+len(overrides))
	for code, label := range defaultShippingMethods {
		labels[code] = label
	}
	for code, label := range overrides {
		labels[strings.TrimSpace(code)] = label
	}

	return &MethodTable{
		labels: labels,
		warned: make(map[string]bool),
		log:    log,
	}
}

// Resolve returns the label for code. A blank code resolves to "". An
// unknown code resolves to itself and is logged as a warning.
func (t *MethodTable) Resolve(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	if label, ok := t.labels[code]; ok && label != "" {
		return label
	}

	if !t.warned[code] {
		t.warned[code] = true
		t.log.Warn("unknown shipping method id, using raw code",
			zap.String("shipping_method_id", code))
	}
	return code
}

// Len returns the number of known codes.
func (t *MethodTable) Len() int {
	return len(t.labels)
}

// ParseMethodMap parses a "code=label&code=label" string.
//
// PARAMETERS:
//   - s: The encoded map. Blank entries are ignored.
//
// RETURNS:
//   - The decoded map.
//   - An error for an entry without "=" or with a blank code.
func ParseMethodMap(s string) (map[string]string, error) {
	methods := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		code, label, ok := strings.Cut(pair, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("invalid shipping method entry %q", pair)
		}
		methods[code] = strings.TrimSpace(label)
	}
	return methods, nil
}

// =============================================================================
// PAYMENT METHODS
// =============================================================================

// PaymentMethodLabel maps a payment method code to its label.
// The second result is false for codes without a label.
func PaymentMethodLabel(code string) (string, bool) {
	switch strings.TrimSpace(code) {
	case "5":
		return "Visa", true
	case "6":
		return "MasterCard", true
	case "7":
		return "American Express", true
	case "8":
		return "Discover", true
	case "12":
		return "PayPal Express Upgrade", true
	case "13":
		return "Purchase Order", true
	default:
		return "", false
	}
}
