// =============================================================================
// Order Fulfillment - Pipeline
// =============================================================================
//
// This is the orchestrator: it ties the readers, the reconciliation engine,
// the exporters and delivery together for one batch run.
//
// RUN FLOW:
//   1. Load customers (local file or download). Zero customers aborts the
//      run before anything is written.
//   2. Load orders. Records without a numeric order ID are dropped.
//   3. With no orders, stop without writing.
//   4. Reconcile: cancelled, unknown-customer and repeated orders are removed.
//   5. Export the ledger file, the tabular import (and workbook) and the
//      fulfillment CSV.
//   6. Upload the fulfillment CSV when FTP is enabled.
//   7. Report removed and processed orders, and write the run summary.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/internal/config"
	"github.com/citycreek/order-fulfillment/internal/customer"
	"github.com/citycreek/order-fulfillment/internal/delivery"
	"github.com/citycreek/order-fulfillment/internal/export"
	"github.com/citycreek/order-fulfillment/internal/fetch"
	"github.com/citycreek/order-fulfillment/internal/order"
	"github.com/citycreek/order-fulfillment/internal/reconcile"
	"github.com/citycreek/order-fulfillment/internal/xmlreader"
	"github.com/citycreek/order-fulfillment/pkg/utils"
)

// ErrNoCustomers aborts a run that loaded no customers, which usually means
// the store rejected the credentials.
var ErrNoCustomers = errors.New("no customers loaded - check the API password file")

// CustomersFile is the name of the downloaded customer snapshot.
const CustomersFile = "customers.xml"

// Downloader saves a URL to a file.
type Downloader interface {
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// Uploader delivers a file.
type Uploader interface {
	Upload(ctx context.Context, localPath string) error
}

// =============================================================================
// RESULT
// =============================================================================

// Result describes a finished run.
type Result struct {
	RunID string

	// Customers is the number of registered customers.
	Customers int

	// OrdersRead is the number of valid orders before reconciliation.
	OrdersRead int

	// Orders are the exported orders.
	Orders []*order.Order

	// Removals lists the orders dropped by reconciliation.
	Removals []reconcile.Removal

	// Files lists every file written or downloaded.
	Files []string

	// FulfillmentFile is the fulfillment CSV, if one was written.
	FulfillmentFile string

	// DeliveryErr is set when the FTP upload failed. The exports stay.
	DeliveryErr error
}

// OrderIDs returns the exported order IDs in ascending order.
func (r *Result) OrderIDs() []int64 {
	ids := make([]int64, 0, len(r.Orders))
	for _, o := range r.Orders {
		ids = append(ids, o.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs one batch.
type Pipeline struct {
	cfg        *config.Config
	log        *zap.Logger
	runID      string
	now        time.Time
	downloader Downloader
	uploader   Uploader
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock fixes the run time used in file names.
func WithClock(now time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithDownloader replaces the HTTP downloader.
func WithDownloader(d Downloader) Option {
	return func(p *Pipeline) { p.downloader = d }
}

// WithUploader replaces the FTP uploader.
func WithUploader(u Uploader) Option {
	return func(p *Pipeline) { p.uploader = u }
}

// New creates a Pipeline for cfg. Every log entry carries the run ID.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.New().String()
	p := &Pipeline{
		cfg:   cfg,
		log:   log.With(zap.String("run_id", runID)),
		runID: runID,
		now:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.downloader == nil {
		p.downloader = fetch.NewClient(cfg.Volusion.Timeout, p.log)
	}
	if p.uploader == nil && cfg.FTP.Enabled {
		p.uploader = delivery.NewFTPUploader(delivery.Options{
			Address:  cfg.FTP.Address,
			Username: cfg.FTP.Username,
			Password: cfg.FTP.Password,
			Dir:      cfg.FTP.Dir,
			Timeout:  cfg.FTP.Timeout,
		}, p.log)
	}
	return p
}

// Run executes the batch.
//
// RETURNS:
//   - The run result. It is non-nil even on error and lists what was done.
//   - ErrNoCustomers, or the first load or export failure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: p.runID}

	p.log.Info("order fulfillment run started")

	registry, err := p.loadCustomers(ctx, res)
	if err != nil {
		return res, err
	}

	orders, err := p.loadOrders(ctx, res)
	if err != nil {
		return res, err
	}
	res.OrdersRead = len(orders)

	if len(orders) == 0 {
		p.log.Info("no orders found - no files written")
		p.report(res)
		return res, p.writeSummary(res, start)
	}

	kept, removals := reconcile.New(registry, p.log).Reconcile(orders)
	res.Orders = kept
	res.Removals = removals

	if err := p.export(res); err != nil {
		return res, err
	}

	p.deliver(ctx, res)
	p.report(res)

	return res, p.writeSummary(res, start)
}

// Fetch downloads the order and customer XML without processing them.
//
// RETURNS:
//   - The downloaded files.
//   - An error if credentials are missing or a download fails.
func (p *Pipeline) Fetch(ctx context.Context) ([]string, error) {
	if err := p.cfg.ValidateRemote(); err != nil {
		return nil, err
	}

	customers, err := p.download(ctx, p.cfg.XML.CustomerURL, customer.XMLColumns, CustomersFile)
	if err != nil {
		return nil, err
	}
	orders, err := p.download(ctx, p.cfg.XML.OrderURL, orderColumns(), p.orderSnapshotName())
	if err != nil {
		return []string{customers}, err
	}
	return []string{customers, orders}, nil
}

// =============================================================================
// LOADING
// =============================================================================

func (p *Pipeline) loadCustomers(ctx context.Context, res *Result) (*customer.Registry, error) {
	path, err := p.source(ctx, res, p.cfg.XML.CustomerFile, p.cfg.XML.CustomerURL, customer.XMLColumns, CustomersFile)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}

	records, err := xmlreader.ReadCustomersFile(path)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}

	registry := customer.NewRegistry()
	registry.RegisterAll(records)
	res.Customers = registry.Len()

	p.log.Info("customers loaded",
		zap.Int("customers", registry.Len()),
		zap.Int("skipped", registry.Skipped()))

	if registry.Len() == 0 {
		return nil, ErrNoCustomers
	}
	return registry, nil
}

func (p *Pipeline) loadOrders(ctx context.Context, res *Result) ([]*order.Order, error) {
	path, err := p.source(ctx, res, p.cfg.XML.OrderFile, p.cfg.XML.OrderURL, orderColumns(), p.orderSnapshotName())
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}

	records, err := xmlreader.ReadOrdersFile(path)
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}

	overrides, err := order.ParseMethodMap(p.cfg.Shipping.MethodMap)
	if err != nil {
		return nil, fmt.Errorf("shipping methods: %w", err)
	}
	parser := order.NewParser(order.NewMethodTable(overrides, p.log), p.log)
	orders := parser.ParseAll(records)

	p.log.Info("orders loaded",
		zap.Int("records", len(records)),
		zap.Int("orders", len(orders)))
	return orders, nil
}

// source returns the local file to read: the configured file in the XML
// directory, or a fresh download of url.
func (p *Pipeline) source(ctx context.Context, res *Result, file, url, columns, snapshot string) (string, error) {
	if file != "" {
		path := filepath.Join(p.cfg.XML.Dir, file)
		p.log.Info("reading xml from file", zap.String("file", path))
		return path, nil
	}

	path, err := p.download(ctx, url, columns, snapshot)
	if err != nil {
		return "", err
	}
	res.Files = append(res.Files, path)
	return path, nil
}

func (p *Pipeline) download(ctx context.Context, template, columns, name string) (string, error) {
	v := p.cfg.Volusion
	dest := filepath.Join(p.cfg.XML.Dir, name)

	p.log.Info("downloading xml",
		zap.String("url", fetch.RedactURL(template, v.Username, columns)),
		zap.String("file", dest))

	if _, err := p.downloader.Download(ctx, fetch.ExpandURL(template, v.Username, v.Password, columns), dest); err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	return dest, nil
}

func (p *Pipeline) orderSnapshotName() string {
	return utils.GenerateOutputFileName("{timestamp}_order", ".xml", p.now)
}

func orderColumns() string {
	return order.XMLColumns + "," + order.LineXMLColumns
}

// =============================================================================
// EXPORTS
// =============================================================================

func (p *Pipeline) export(res *Result) error {
	ledger := export.NewLedger(p.cfg.Ledger.Dir, export.LedgerOptions{
		IncludeTransactions: p.cfg.Ledger.IncludeTransactions,
		Account:             p.cfg.Ledger.Account,
		Class:               p.cfg.Ledger.Class,
	}, p.log)

	var workbook *export.Workbook
	if p.cfg.Tabular.Workbook {
		workbook = export.NewWorkbook(p.cfg.Tabular.Dir, p.cfg.Tabular.WorkbookFile)
	}
	tabular := export.NewTabular(p.cfg.Tabular.Dir, p.cfg.Tabular.FileName, export.TabularOptions{
		Account:      p.cfg.Tabular.Account,
		SalesTaxItem: p.cfg.Tabular.SalesTaxItem,
	}, workbook, p.log)

	fulfillment := export.NewFulfillment(
		p.cfg.Fulfillment.Dir,
		utils.GenerateOutputFileName(p.cfg.Fulfillment.FileName, ".csv", p.now),
		order.NewExclusionSet(p.cfg.Shipping.ExcludedProducts),
		p.log)

	steps := []struct {
		name     string
		exporter export.Exporter
	}{
		{"ledger", ledger},
		{"tabular", tabular},
		{"fulfillment", fulfillment},
	}

	for _, step := range steps {
		out, err := step.exporter.Export(res.Orders)
		if err != nil {
			return fmt.Errorf("%s export: %w", step.name, err)
		}
		res.Files = append(res.Files, out.Path)
	}
	if workbook != nil {
		res.Files = append(res.Files, workbook.Path())
	}
	res.FulfillmentFile = fulfillment.Path()

	p.log.Info("excluded from shipping",
		zap.String("products", p.cfg.Shipping.ExcludedProducts))
	return nil
}

func (p *Pipeline) deliver(ctx context.Context, res *Result) {
	if p.uploader == nil || res.FulfillmentFile == "" {
		return
	}
	if err := p.uploader.Upload(ctx, res.FulfillmentFile); err != nil {
		res.DeliveryErr = err
		p.log.Error("fulfillment delivery failed",
			zap.String("file", res.FulfillmentFile),
			zap.Error(err))
	}
}

// =============================================================================
// REPORTING
// =============================================================================

func (p *Pipeline) report(res *Result) {
	if len(res.Removals) > 0 {
		p.log.Info("ignored orders", zap.Int("count", len(res.Removals)))
		for _, r := range res.Removals {
			p.log.Info("  "+r.String(),
				zap.Int64("order_id", r.OrderID),
				zap.String("reason", string(r.Reason)))
		}
	} else {
		p.log.Info("no orders ignored")
	}

	ids := res.OrderIDs()
	p.log.Info(fmt.Sprintf("%d order(s) processed - %v", len(ids), ids))
}

func (p *Pipeline) writeSummary(res *Result, start time.Time) error {
	if p.cfg.Logging.SummaryDir == "" {
		return nil
	}

	summary := utils.RunSummary{
		RunID:          res.RunID,
		StartTime:      start,
		EndTime:        time.Now(),
		Customers:      res.Customers,
		OrdersRead:     res.OrdersRead,
		OrdersExported: res.OrderIDs(),
		Files:          res.Files,
	}
	for _, r := range res.Removals {
		summary.Removed = append(summary.Removed, r.String())
	}
	if res.DeliveryErr != nil {
		summary.Warnings = append(summary.Warnings, "delivery failed: "+res.DeliveryErr.Error())
	}

	path, err := utils.WriteSummaryLog(summary, p.cfg.Logging.SummaryDir)
	if err != nil {
		return fmt.Errorf("run summary: %w", err)
	}
	p.log.Info("run summary written", zap.String("file", path))
	return nil
}
