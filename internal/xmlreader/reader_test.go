package xmlreader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersXML = `<?xml version="1.0" encoding="utf-8"?>
<xmldata>
  <Orders>
    <OrderID>1001</OrderID>
    <CustomerID>42</CustomerID>
    <ShipFirstName> Jane </ShipFirstName>
    <OrderDetails>
      <ProductCode>WIDGET</ProductCode>
      <Quantity>3</Quantity>
    </OrderDetails>
    <OrderDetails>
      <ProductCode>GADGET</ProductCode>
      <Quantity>1</Quantity>
    </OrderDetails>
  </Orders>
  <Orders>
    <OrderID>1002</OrderID>
  </Orders>
</xmldata>`

func TestReadOrders(t *testing.T) {
	orders, err := ReadOrders(strings.NewReader(ordersXML))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "1001", first.Header.Get("OrderID"))
	assert.Equal(t, "42", first.Header.Get("CustomerID"))
	assert.Equal(t, "Jane", first.Header.Get("ShipFirstName"))
	assert.False(t, first.Header.Has("OrderDetails"))
	require.Len(t, first.Lines, 2)
	assert.Equal(t, "WIDGET", first.Lines[0].Get("ProductCode"))
	assert.Equal(t, "3", first.Lines[0].Get("Quantity"))
	assert.Equal(t, "GADGET", first.Lines[1].Get("ProductCode"))

	assert.Equal(t, "1002", orders[1].Header.Get("OrderID"))
	assert.Empty(t, orders[1].Lines)
}

func TestReadCustomers(t *testing.T) {
	doc := `<xmldata>
  <Customers><CustomerID>42</CustomerID><EmailAddress>jane@example.com</EmailAddress></Customers>
  <Customers><CustomerID>43</CustomerID></Customers>
  <Other><CustomerID>99</CustomerID></Other>
</xmldata>`

	customers, err := ReadCustomers(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "jane@example.com", customers[0].Get("EmailAddress"))
	assert.Equal(t, "43", customers[1].Get("CustomerID"))
}

func TestReadOrdersMalformed(t *testing.T) {
	_, err := ReadOrders(strings.NewReader("<xmldata><Orders><OrderID>1</Orders>"))
	assert.Error(t, err)
}

func TestReadFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.xml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	orders, err := ReadOrdersFile(empty)
	require.NoError(t, err)
	assert.Empty(t, orders)

	customers, err := ReadCustomersFile(empty)
	require.NoError(t, err)
	assert.Empty(t, customers)

	_, err = ReadOrdersFile(filepath.Join(dir, "missing.xml"))
	assert.Error(t, err)
}
