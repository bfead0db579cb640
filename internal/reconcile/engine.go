// =============================================================================
// Order Fulfillment - Reconciliation Engine
// =============================================================================
//
// The engine makes one left-to-right pass over the orders, which the store
// delivers in ascending order ID. For each order it:
//   1. Drops cancelled orders.
//   2. Attaches the customer, dropping orders whose customer is unknown.
//   3. Appends a shipping line when the order has a shipping cost.
//   4. Drops orders that repeat the previous order.
//
// REPEATED ORDERS:
//   The store re-emits an edited order as a new row with the next order ID.
//   An order repeats the previous kept or repeated order when:
//     - its ID is exactly one higher
//     - it has the same customer ID
//     - its (product code, quantity) lines match in order
//   Cancelled and unknown-customer orders never become the previous order.
//
// =============================================================================

package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/customer"
	"github.com/citycreek/order-fulfillment/internal/order"
)

// Reason is why an order was removed.
type Reason string

const (
	ReasonCancelled       Reason = "cancelled"
	ReasonUnknownCustomer Reason = "unknown customer"
	ReasonDuplicate       Reason = "duplicate"
)

// Removal records one removed order.
type Removal struct {
	OrderID int64
	Reason  Reason
	Message string
}

func (r Removal) String() string {
	return r.Message
}

// Engine reconciles orders against a customer registry.
type Engine struct {
	registry *customer.Registry
	log      *zap.Logger
}

// New creates an Engine.
func New(registry *customer.Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: registry, log: log}
}

// Reconcile filters and enriches orders.
//
// PARAMETERS:
//   - orders: The parsed orders in ascending order ID. Kept orders are
//     modified in place.
//
// RETURNS:
//   - The kept orders, in input order. Each has a customer and is not
//     cancelled.
//   - One Removal per dropped order, in input order.
func (e *Engine) Reconcile(orders []*order.Order) ([]*order.Order, []Removal) {
	kept := make([]*order.Order, 0, len(orders))
	var removals []Removal
	var prev *order.Order

	for _, o := range orders {
		if o.IsCancelled() {
			removals = append(removals, e.remove(o, ReasonCancelled,
				fmt.Sprintf("%s :: %d - cancelled", o.BillName(), o.ID)))
			continue
		}

		c, ok := e.registry.Lookup(o.CustomerID)
		if !ok {
			removals = append(removals, e.remove(o, ReasonUnknownCustomer,
				fmt.Sprintf("%s :: %d - unknown customer", o.CustomerID, o.ID)))
			continue
		}
		o.Customer = c

		if o.TotalShippingCost.IsPositive() && !o.HasShippingLine() {
			o.Lines = append(o.Lines, order.NewShippingLine(o.ShipMethod, o.TotalShippingCost))
		}

		if prev != nil && IsDuplicate(prev, o) {
			removals = append(removals, e.remove(o, ReasonDuplicate,
				fmt.Sprintf("%s :: %d = %d - duplicate", prev.Customer.CustomerName(), prev.ID, o.ID)))
			prev = o
			continue
		}

		kept = append(kept, o)
		prev = o
	}

	return kept, removals
}

// IsDuplicate reports whether curr repeats prev.
func IsDuplicate(prev, curr *order.Order) bool {
	if curr.ID != prev.ID+1 {
		return false
	}
	if curr.CustomerID != prev.CustomerID {
		return false
	}
	return order.SameLines(prev.Lines, curr.Lines)
}

func (e *Engine) remove(o *order.Order, reason Reason, msg string) Removal {
	e.log.Debug("order removed",
		zap.Int64("order_id", o.ID),
		zap.String("reason", string(reason)))
	return Removal{OrderID: o.ID, Reason: reason, Message: msg}
}
