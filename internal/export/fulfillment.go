package export

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/order"
)

// FulfillmentColumns is the fulfillment CSV header.
var FulfillmentColumns = []string{
	"OrderID", "PONum", "ShipName", "ShipCompanyName", "ShipAddress1", "ShipAddress2",
	"ShipCity", "ShipState", "ShipPostalCode", "ShipCountry", "ShipMethod",
	"ProductCode", "Quantity", "EmailAddress",
}

// Fulfillment writes the shipping-fulfillment CSV: one row per shippable line.
type Fulfillment struct {
	path     string
	excluded order.ExclusionSet
	log      *zap.Logger
}

// NewFulfillment creates a fulfillment exporter writing to dir/fileName.
func NewFulfillment(dir, fileName string, excluded order.ExclusionSet, log *zap.Logger) *Fulfillment {
	if log == nil {
		log = zap.NewNop()
	}
	if excluded == nil {
		excluded = order.ExclusionSet{}
	}
	return &Fulfillment{
		path:     filepath.Join(dir, fileName),
		excluded: excluded,
		log:      log,
	}
}

// Path returns the file the exporter writes to.
func (f *Fulfillment) Path() string {
	return f.path
}

// Export appends one row per product or shipping line that is not excluded.
// An order whose lines are all excluded contributes no rows.
func (f *Fulfillment) Export(orders []*order.Order) (Result, error) {
	w := newRowWriter(',')
	res := Result{Path: f.path}

	for _, o := range orders {
		for _, l := range o.Lines {
			switch l.Kind {
			case order.KindProduct, order.KindShipping:
			default:
				continue
			}
			if f.excluded.Excludes(l) {
				continue
			}
			f.writeLine(w, o, l)
			res.OrderIDs = appendID(res.OrderIDs, o.ID)
		}
	}

	created, err := appendWithHeader(f.path, headerLine(",", FulfillmentColumns...), w.data())
	if err != nil {
		return res, err
	}
	res.Rows = w.rows
	res.Created = created

	f.log.Info("fulfillment export written",
		zap.String("file", f.path),
		zap.Int("rows", res.Rows))
	return res, nil
}

func (f *Fulfillment) writeLine(w *rowWriter, o *order.Order, l order.Line) {
	w.number(o.ID)
	w.text(o.PONum)
	w.text(o.Ship.FirstLastName())
	w.text(o.Ship.CompanyName)
	w.text(o.Ship.Address1)
	w.text(o.Ship.Address2)
	w.text(o.Ship.City)
	w.text(o.Ship.State)
	w.text(o.Ship.PostalCode)
	w.text(o.Ship.Country)
	w.text(o.ShipMethod)
	w.text(l.ProductCode)
	w.raw(l.Quantity)
	w.text(o.EmailAddress())
	w.end()
}
