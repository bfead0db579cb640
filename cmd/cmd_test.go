package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCustomers = `<xmldata>
  <Customers><CustomerID>42</CustomerID><FirstName>Jane</FirstName><LastName>Doe</LastName></Customers>
</xmldata>`

const testOrders = `<xmldata>
  <Orders>
    <OrderID>500</OrderID><CustomerID>42</CustomerID>
    <BillingFirstName>Jane</BillingFirstName><BillingLastName>Doe</BillingLastName>
    <OrderDetails><ProductCode>WIDGET</ProductCode><ProductPrice>10</ProductPrice>
      <Quantity>3</Quantity><TotalPrice>30</TotalPrice></OrderDetails>
  </Orders>
</xmldata>`

// writeWorkspace lays out a config file and saved XML in a temp directory.
func writeWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	xmlDir := filepath.Join(dir, "xml")
	require.NoError(t, os.MkdirAll(xmlDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "customers.xml"), []byte(testCustomers), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "orders.xml"), []byte(testOrders), 0644))

	cfg := "xml:\n  dir: " + xmlDir + "\n" +
		"fulfillment:\n  dir: " + filepath.Join(dir, "fulfillment") + "\n" +
		"ledger:\n  dir: " + filepath.Join(dir, "quickbooks") + "\n" +
		"tabular:\n  dir: " + filepath.Join(dir, "quickbooks") + "\n" +
		"volusion:\n  password_file: " + filepath.Join(dir, "password.txt") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return dir, path
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestRunCommand(t *testing.T) {
	dir, path := writeWorkspace(t)

	err := execute("run", "--config", path, "xml.order_file=orders.xml", "xml.customer_file=customers.xml")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "fulfillment", "*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.FileExists(t, filepath.Join(dir, "quickbooks", "citycreek_orders.csv"))
}

func TestRunCommandRejectsUnknownKey(t *testing.T) {
	_, path := writeWorkspace(t)

	err := execute("run", "--config", path, "no.such.key=1")
	assert.ErrorContains(t, err, "unknown configuration key")
}

func TestRunCommandRejectsBareArgument(t *testing.T) {
	_, path := writeWorkspace(t)

	err := execute("run", "--config", path, "orders.xml")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestValidateCommandRequiresCredentials(t *testing.T) {
	_, path := writeWorkspace(t)

	assert.Error(t, execute("validate", "--config", path))
	assert.NoError(t, execute("validate", "--config", path,
		"xml.order_file=orders.xml", "xml.customer_file=customers.xml"))
}
