package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/citycreek/order-fulfillment/internal/config"
	"github.com/citycreek/order-fulfillment/internal/reconcile"
)

const customersXML = `<xmldata>
  <Customers><CustomerID>42</CustomerID><FirstName>Jane</FirstName><LastName>Doe</LastName></Customers>
  <Customers><CustomerID>43</CustomerID><CompanyName>Acme</CompanyName></Customers>
  <Customers><CustomerID>44</CustomerID><FirstName>anonymous_user</FirstName></Customers>
</xmldata>`

const ordersXML = `<xmldata>
  <Orders>
    <OrderID>500</OrderID><CustomerID>42</CustomerID><OrderDate>10/1/2026</OrderDate>
    <ShipFirstName>Jane</ShipFirstName><ShipLastName>Doe</ShipLastName>
    <BillingFirstName>Jane</BillingFirstName><BillingLastName>Doe</BillingLastName>
    <TotalShippingCost>5.00</TotalShippingCost>
    <OrderDetails><ProductCode>WIDGET</ProductCode><ProductName>Widget</ProductName>
      <ProductPrice>10.00</ProductPrice><Quantity>3</Quantity><TotalPrice>30.00</TotalPrice></OrderDetails>
  </Orders>
  <Orders>
    <OrderID>501</OrderID><CustomerID>42</CustomerID><OrderDate>10/1/2026</OrderDate>
    <TotalShippingCost>5.00</TotalShippingCost>
    <OrderDetails><ProductCode>WIDGET</ProductCode><ProductName>Widget</ProductName>
      <ProductPrice>10.00</ProductPrice><Quantity>3</Quantity><TotalPrice>30.00</TotalPrice></OrderDetails>
  </Orders>
  <Orders>
    <OrderID>502</OrderID><CustomerID>99</CustomerID>
    <OrderDetails><ProductCode>WIDGET</ProductCode><Quantity>1</Quantity></OrderDetails>
  </Orders>
  <Orders>
    <OrderID>503</OrderID><CustomerID>43</CustomerID><OrderStatus>Cancelled</OrderStatus>
    <BillingCompanyName>Acme</BillingCompanyName>
  </Orders>
  <Orders>
    <OrderID>504</OrderID><CustomerID>43</CustomerID><OrderDate>10/2/2026</OrderDate>
    <OrderDetails><ProductCode>GADGET</ProductCode><ProductName>Gadget</ProductName>
      <ProductPrice>7.50</ProductPrice><Quantity>1</Quantity><TotalPrice>7.50</TotalPrice></OrderDetails>
  </Orders>
  <Orders><OrderID>not-a-number</OrderID></Orders>
</xmldata>`

var runTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, customers, orders string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	xmlDir := filepath.Join(dir, "xml")
	require.NoError(t, os.MkdirAll(xmlDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "customers.xml"), []byte(customers), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "orders.xml"), []byte(orders), 0644))

	return &config.Config{
		XML: config.XMLConfig{
			Dir:          xmlDir,
			OrderFile:    "orders.xml",
			CustomerFile: "customers.xml",
		},
		Shipping:    config.ShippingConfig{ExcludedProducts: "SHIPPING"},
		Fulfillment: config.FulfillmentConfig{Dir: filepath.Join(dir, "fulfillment"), FileName: "{timestamp}.csv"},
		Ledger:      config.LedgerConfig{Dir: filepath.Join(dir, "quickbooks")},
		Tabular: config.TabularConfig{
			Dir:          filepath.Join(dir, "quickbooks"),
			FileName:     "citycreek_orders.csv",
			SalesTaxItem: "Minnesota",
		},
		Logging: config.LoggingConfig{SummaryDir: filepath.Join(dir, "logs")},
	}
}

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, localPath string) error {
	f.paths = append(f.paths, localPath)
	return f.err
}

type fakeDownloader struct {
	bodies map[string]string
	urls   []string
}

func (f *fakeDownloader) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	f.urls = append(f.urls, rawURL)
	for prefix, body := range f.bodies {
		if strings.HasPrefix(rawURL, prefix) {
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return 0, err
			}
			return int64(len(body)), os.WriteFile(dest, []byte(body), 0644)
		}
	}
	return 0, errors.New("unexpected status: 404")
}

func TestRun(t *testing.T) {
	cfg := testConfig(t, customersXML, ordersXML)
	core, logs := observer.New(zapcore.InfoLevel)
	uploader := &fakeUploader{}

	res, err := New(cfg, zap.New(core), WithClock(runTime), WithUploader(uploader)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Customers)
	assert.Equal(t, 5, res.OrdersRead)
	assert.Equal(t, []int64{500, 504}, res.OrderIDs())

	require.Len(t, res.Removals, 3)
	assert.Equal(t, reconcile.ReasonDuplicate, res.Removals[0].Reason)
	assert.Equal(t, "Jane Doe :: 500 = 501 - duplicate", res.Removals[0].Message)
	assert.Equal(t, "99 :: 502 - unknown customer", res.Removals[1].Message)
	assert.Equal(t, "Acme :: 503 - cancelled", res.Removals[2].Message)

	fulfillment := filepath.Join(cfg.Fulfillment.Dir, "202610151200.csv")
	assert.Equal(t, fulfillment, res.FulfillmentFile)
	data, err := os.ReadFile(fulfillment)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WIDGET")
	assert.Contains(t, string(data), "GADGET")
	assert.NotContains(t, string(data), "Shipping")

	assert.FileExists(t, filepath.Join(cfg.Ledger.Dir, "citycreek_customers.iif"))
	assert.FileExists(t, filepath.Join(cfg.Tabular.Dir, "citycreek_orders.csv"))
	assert.Equal(t, []string{fulfillment}, uploader.paths)
	assert.NoError(t, res.DeliveryErr)

	assert.Equal(t, 1, logs.FilterMessage("ignored orders").Len())
	assert.Equal(t, 1, logs.FilterMessage("2 order(s) processed - [500 504]").Len())

	summaries, err := filepath.Glob(filepath.Join(cfg.Logging.SummaryDir, "run_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestRunNoCustomers(t *testing.T) {
	cfg := testConfig(t, "<xmldata/>", ordersXML)

	res, err := New(cfg, nil, WithClock(runTime)).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCustomers)
	assert.Empty(t, res.Files)
	assert.NoDirExists(t, cfg.Fulfillment.Dir)
	assert.NoDirExists(t, cfg.Ledger.Dir)
}

func TestRunNoOrders(t *testing.T) {
	cfg := testConfig(t, customersXML, "<xmldata/>")
	core, logs := observer.New(zapcore.InfoLevel)

	res, err := New(cfg, zap.New(core), WithClock(runTime)).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.NoDirExists(t, cfg.Fulfillment.Dir)
	assert.Equal(t, 1, logs.FilterMessage("no orders found - no files written").Len())
}

func TestRunDeliveryFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t, customersXML, ordersXML)
	uploader := &fakeUploader{err: errors.New("530 denied")}

	res, err := New(cfg, nil, WithClock(runTime), WithUploader(uploader)).Run(context.Background())
	require.NoError(t, err)
	assert.EqualError(t, res.DeliveryErr, "530 denied")
	assert.FileExists(t, res.FulfillmentFile)
}

func TestRunDownloadsSnapshots(t *testing.T) {
	cfg := testConfig(t, customersXML, ordersXML)
	cfg.XML.OrderFile = ""
	cfg.XML.CustomerFile = ""
	cfg.XML.OrderURL = "https://store/orders?Login={username}&EncryptedPassword={password}&SELECT_Columns={columns}"
	cfg.XML.CustomerURL = "https://store/customers?Login={username}&EncryptedPassword={password}"
	cfg.Volusion.Username = "jane"
	cfg.Volusion.Password = "secret"

	downloader := &fakeDownloader{bodies: map[string]string{
		"https://store/orders":    ordersXML,
		"https://store/customers": customersXML,
	}}

	res, err := New(cfg, nil, WithClock(runTime), WithDownloader(downloader)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{500, 504}, res.OrderIDs())

	require.Len(t, downloader.urls, 2)
	assert.Contains(t, downloader.urls[0], "EncryptedPassword=secret")
	assert.Contains(t, downloader.urls[1], "SELECT_Columns=o.OrderID")
	assert.FileExists(t, filepath.Join(cfg.XML.Dir, "202610151200_order.xml"))
	assert.Contains(t, res.Files, filepath.Join(cfg.XML.Dir, CustomersFile))
}

func TestFetchRequiresCredentials(t *testing.T) {
	cfg := testConfig(t, customersXML, ordersXML)

	_, err := New(cfg, nil, WithDownloader(&fakeDownloader{})).Fetch(context.Background())
	assert.Error(t, err)
}
