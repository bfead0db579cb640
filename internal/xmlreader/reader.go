// =============================================================================
// Order Fulfillment - XML Reader Module
// =============================================================================
//
// This module turns the store's XML exports into flat records. It handles the
// two documents the store produces:
//   - Orders:    <xmldata><Orders>...<OrderDetails>...</OrderDetails></Orders></xmldata>
//   - Customers: <xmldata><Customers>...</Customers></xmldata>
//
// DOCUMENT SHAPE:
//   <xmldata>
//     <Orders>
//       <OrderID>1001</OrderID>               <!-- order-level field -->
//       <CustomerID>42</CustomerID>
//       <OrderDetails>                        <!-- one line per element -->
//         <ProductCode>WIDGET</ProductCode>
//         <Quantity>3</Quantity>
//       </OrderDetails>
//     </Orders>
//   </xmldata>
//
// Only leaf elements become fields. Text is whitespace-trimmed. Entities are
// returned in document order; nothing is sorted or deduplicated here.
//
// =============================================================================

package xmlreader

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/citycreek/order-fulfillment/internal/types"
)

// =============================================================================
// ELEMENT NAMES
// =============================================================================

const (
	// OrdersElement is the element wrapping a single order.
	OrdersElement = "Orders"

	// OrderDetailsElement is the element wrapping a single order line.
	OrderDetailsElement = "OrderDetails"

	// CustomersElement is the element wrapping a single customer.
	CustomersElement = "Customers"
)

// node is a generic XML element used for the tree walk.
type node struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadOrders parses an orders document.
//
// PARAMETERS:
//   - r: The XML document.
//
// RETURNS:
//   - One OrderRecord per <Orders> element under the root, in document order.
//   - An error if the document is not well-formed.
func ReadOrders(r io.Reader) ([]types.OrderRecord, error) {
	root, err := decodeRoot(r)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	var orders []types.OrderRecord
	for _, entity := range root.Nodes {
		if entity.XMLName.Local != OrdersElement {
			continue
		}

		rec := types.OrderRecord{Header: types.NewRecord(nil)}
		for _, child := range entity.Nodes {
			if child.XMLName.Local == OrderDetailsElement {
				rec.Lines = append(rec.Lines, flatten(child))
				continue
			}
			if len(child.Nodes) > 0 {
				// Nested groups other than order details carry no order fields.
				continue
			}
			rec.Header.Set(child.XMLName.Local, strings.TrimSpace(child.Content))
		}
		orders = append(orders, rec)
	}

	return orders, nil
}

// ReadCustomers parses a customers document.
//
// PARAMETERS:
//   - r: The XML document.
//
// RETURNS:
//   - One Record per <Customers> element under the root, in document order.
//   - An error if the document is not well-formed.
func ReadCustomers(r io.Reader) ([]types.Record, error) {
	root, err := decodeRoot(r)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	var customers []types.Record
	for _, entity := range root.Nodes {
		if entity.XMLName.Local != CustomersElement {
			continue
		}
		customers = append(customers, flatten(entity))
	}

	return customers, nil
}

// ReadOrdersFile opens filePath and parses it with ReadOrders.
// An empty file yields no orders.
func ReadOrdersFile(filePath string) ([]types.OrderRecord, error) {
	var orders []types.OrderRecord
	err := withFile(filePath, func(r io.Reader) error {
		var err error
		orders, err = ReadOrders(r)
		return err
	})
	return orders, err
}

// ReadCustomersFile opens filePath and parses it with ReadCustomers.
// An empty file yields no customers.
func ReadCustomersFile(filePath string) ([]types.Record, error) {
	var customers []types.Record
	err := withFile(filePath, func(r io.Reader) error {
		var err error
		customers, err = ReadCustomers(r)
		return err
	})
	return customers, err
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// withFile opens filePath, skips empty files and hands a buffered reader to fn.
func withFile(filePath string, fn func(io.Reader) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	if err := fn(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return nil
}

// decodeRoot decodes the whole document into a node tree.
// A document with no root element returns a nil node.
func decodeRoot(r io.Reader) (*node, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode XML: %w", err)
	}
	return &root, nil
}

// flatten turns the leaf children of n into a Record.
func flatten(n node) types.Record {
	rec := types.NewRecord(nil)
	for _, child := range n.Nodes {
		if len(child.Nodes) > 0 {
			continue
		}
		rec.Set(child.XMLName.Local, strings.TrimSpace(child.Content))
	}
	return rec
}
