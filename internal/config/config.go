// =============================================================================
// Order Fulfillment - Configuration Module
// =============================================================================
//
// This module loads the run configuration. Values are layered, later layers
// winning:
//   1. Built-in defaults
//   2. The YAML config file
//   3. Environment variables (secrets and log level)
//   4. key=value pairs from the command line
//
// CONFIGURATION FILE (config.yaml):
//   volusion:
//     username: "store@example.com"
//     password_file: "password.txt"
//   xml:
//     dir: "xml"
//     order_url: "https://store.example.com/net/WebService.aspx?Login={username}&EncryptedPassword={password}&EDI_Name=Generic\\Orders&SELECT_Columns={columns}"
//   shipping:
//     excluded_products: "SHIPPING,GIFTCARD"
//     method_map: "9100=Freight&9101=Will Call"
//   ledger:
//     include_transactions: false
//
// A run either reads the XML from local files (xml.order_file and
// xml.customer_file) or downloads it from the store URLs.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/citycreek/order-fulfillment/internal/order"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "config.yaml"

// ErrMissingValue is returned when a required value is not configured.
var ErrMissingValue = errors.New("missing required configuration value")

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the complete run configuration.
type Config struct {
	Volusion    VolusionConfig    `yaml:"volusion"`
	XML         XMLConfig         `yaml:"xml"`
	Shipping    ShippingConfig    `yaml:"shipping"`
	Fulfillment FulfillmentConfig `yaml:"fulfillment"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Tabular     TabularConfig     `yaml:"tabular"`
	FTP         FTPConfig         `yaml:"ftp"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// VolusionConfig holds the store API credentials.
type VolusionConfig struct {
	Username string `yaml:"username" env:"VOLUSION_USERNAME"`

	// Password is normally read from PasswordFile.
	Password string `yaml:"password" env:"VOLUSION_PASSWORD"`

	PasswordFile string `yaml:"password_file"`

	// Timeout bounds each download.
	Timeout time.Duration `yaml:"timeout"`
}

// XMLConfig locates the order and customer XML.
type XMLConfig struct {
	// Dir holds downloaded snapshots and local input files.
	Dir string `yaml:"dir"`

	// OrderFile and CustomerFile, when set, are read from Dir instead of
	// downloading.
	OrderFile    string `yaml:"order_file"`
	CustomerFile string `yaml:"customer_file"`

	// OrderURL and CustomerURL are URL templates. {username}, {password} and
	// {columns} (or {0}, {1}, {2}) are replaced before the request.
	OrderURL    string `yaml:"order_url"`
	CustomerURL string `yaml:"customer_url"`
}

// ShippingConfig configures shipping labels and exclusions.
type ShippingConfig struct {
	// MethodMap is "code=label&code=label", overlaid on the built-in table.
	MethodMap string `yaml:"method_map"`

	// ExcludedProducts is a comma separated list of product codes that are
	// never shipped.
	ExcludedProducts string `yaml:"excluded_products"`
}

// FulfillmentConfig configures the fulfillment CSV.
type FulfillmentConfig struct {
	Dir string `yaml:"dir"`

	// FileName is a name format; see utils.GenerateOutputFileName.
	FileName string `yaml:"file_name"`
}

// LedgerConfig configures the interchange file.
type LedgerConfig struct {
	Dir string `yaml:"dir"`

	// IncludeTransactions writes invoices as well as customers.
	IncludeTransactions bool `yaml:"include_transactions"`

	Account string `yaml:"account"`
	Class   string `yaml:"class"`
}

// TabularConfig configures the tabular import CSV and workbook.
type TabularConfig struct {
	Dir          string `yaml:"dir"`
	FileName     string `yaml:"file_name"`
	Account      string `yaml:"account"`
	SalesTaxItem string `yaml:"sales_tax_item"`

	// Workbook also appends the rows to WorkbookFile.
	Workbook     bool   `yaml:"workbook"`
	WorkbookFile string `yaml:"workbook_file"`
}

// FTPConfig configures delivery of the fulfillment CSV.
type FTPConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Username string        `yaml:"username" env:"FTP_USERNAME"`
	Password string        `yaml:"password" env:"FTP_PASSWORD"`
	Dir      string        `yaml:"dir"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig configures the logger and the run summary.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`

	// SummaryDir receives the run summary; empty disables it.
	SummaryDir string `yaml:"summary_dir"`
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The YAML file. A missing file is only tolerated for
//     DefaultPath, so a bare run can rely on flags and environment alone.
//   - overrides: key=value pairs from the command line.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file cannot be read or parsed, an override is unknown,
//     or a required value is missing.
func Load(configPath string, overrides map[string]string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = DefaultPath
	}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && configPath == DefaultPath:
		// Defaults, environment and overrides only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.ApplyOverrides(overrides); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.loadPassword(); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.Volusion.PasswordFile == "" {
		config.Volusion.PasswordFile = "password.txt"
	}
	if config.Volusion.Timeout == 0 {
		config.Volusion.Timeout = 2 * time.Minute
	}
	if config.XML.Dir == "" {
		config.XML.Dir = "xml"
	}
	if config.Shipping.ExcludedProducts == "" {
		config.Shipping.ExcludedProducts = "SHIPPING"
	}
	if config.Fulfillment.Dir == "" {
		config.Fulfillment.Dir = "order_fulfillment"
	}
	if config.Fulfillment.FileName == "" {
		config.Fulfillment.FileName = "{timestamp}.csv"
	}
	if config.Ledger.Dir == "" {
		config.Ledger.Dir = "quickbooks"
	}
	if config.Ledger.Account == "" {
		config.Ledger.Account = "Accounts Receivable"
	}
	if config.Ledger.Class == "" {
		config.Ledger.Class = "website"
	}
	if config.Tabular.Dir == "" {
		config.Tabular.Dir = "quickbooks"
	}
	if config.Tabular.FileName == "" {
		config.Tabular.FileName = "citycreek_orders.csv"
	}
	if config.Tabular.Account == "" {
		config.Tabular.Account = "Accounts Receivable"
	}
	if config.Tabular.SalesTaxItem == "" {
		config.Tabular.SalesTaxItem = "Minnesota"
	}
	if config.Tabular.WorkbookFile == "" {
		config.Tabular.WorkbookFile = "citycreek_orders.xlsx"
	}
	if config.FTP.Timeout == 0 {
		config.FTP.Timeout = 30 * time.Second
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}
}

// loadPassword reads the store password from its file when it was not given
// directly. A missing password file is only an error once a download needs it.
func (c *Config) loadPassword() error {
	if c.Volusion.Password != "" {
		return nil
	}
	data, err := os.ReadFile(c.Volusion.PasswordFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read password file: %w", err)
	}
	c.Volusion.Password = strings.TrimSpace(string(data))
	return nil
}

// validate checks the values a run cannot do without.
func validate(config *Config) error {
	if config.XML.OrderFile == "" {
		if err := config.requireRemote("xml.order_url", config.XML.OrderURL); err != nil {
			return err
		}
	}
	if config.XML.CustomerFile == "" {
		if err := config.requireRemote("xml.customer_url", config.XML.CustomerURL); err != nil {
			return err
		}
	}

	if config.FTP.Enabled && config.FTP.Address == "" {
		return fmt.Errorf("%w: ftp.address", ErrMissingValue)
	}

	if _, err := order.ParseMethodMap(config.Shipping.MethodMap); err != nil {
		return fmt.Errorf("shipping.method_map: %w", err)
	}

	return nil
}

// ValidateRemote checks the values needed to download both documents.
func (c *Config) ValidateRemote() error {
	if err := c.requireRemote("xml.order_url", c.XML.OrderURL); err != nil {
		return err
	}
	return c.requireRemote("xml.customer_url", c.XML.CustomerURL)
}

func (c *Config) requireRemote(urlKey, url string) error {
	if url == "" {
		return fmt.Errorf("%w: %s", ErrMissingValue, urlKey)
	}
	if c.Volusion.Username == "" {
		return fmt.Errorf("%w: volusion.username", ErrMissingValue)
	}
	if c.Volusion.Password == "" {
		return fmt.Errorf("%w: volusion.password (or %s)", ErrMissingValue, c.Volusion.PasswordFile)
	}
	return nil
}
