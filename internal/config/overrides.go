package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// setter applies one command-line value.
type setter func(c *Config, value string) error

func setString(field func(c *Config) *string) setter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

func setBool(field func(c *Config) *bool) setter {
	return func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func setDuration(field func(c *Config) *time.Duration) setter {
	return func(c *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// overrideKeys maps each accepted command-line key to its field. The dotted
// property names of the older properties file are accepted as aliases.
var overrideKeys = map[string]setter{
	"volusion.username":      setString(func(c *Config) *string { return &c.Volusion.Username }),
	"volusion.password":      setString(func(c *Config) *string { return &c.Volusion.Password }),
	"volusion.password_file": setString(func(c *Config) *string { return &c.Volusion.PasswordFile }),
	"volusion.timeout":       setDuration(func(c *Config) *time.Duration { return &c.Volusion.Timeout }),

	"xml.dir":           setString(func(c *Config) *string { return &c.XML.Dir }),
	"xml.order_file":    setString(func(c *Config) *string { return &c.XML.OrderFile }),
	"xml.customer_file": setString(func(c *Config) *string { return &c.XML.CustomerFile }),
	"xml.order_url":     setString(func(c *Config) *string { return &c.XML.OrderURL }),
	"xml.customer_url":  setString(func(c *Config) *string { return &c.XML.CustomerURL }),
	"xml.order.file":    setString(func(c *Config) *string { return &c.XML.OrderFile }),
	"xml.customer.file": setString(func(c *Config) *string { return &c.XML.CustomerFile }),
	"xml.order.url":     setString(func(c *Config) *string { return &c.XML.OrderURL }),
	"xml.customer.url":  setString(func(c *Config) *string { return &c.XML.CustomerURL }),

	"shipping.method_map":        setString(func(c *Config) *string { return &c.Shipping.MethodMap }),
	"shipping.excluded_products": setString(func(c *Config) *string { return &c.Shipping.ExcludedProducts }),
	"csv.ShipMethodMap":          setString(func(c *Config) *string { return &c.Shipping.MethodMap }),
	"excluded.products":          setString(func(c *Config) *string { return &c.Shipping.ExcludedProducts }),

	"fulfillment.dir":       setString(func(c *Config) *string { return &c.Fulfillment.Dir }),
	"fulfillment.file_name": setString(func(c *Config) *string { return &c.Fulfillment.FileName }),
	"order.fulfillment.dir": setString(func(c *Config) *string { return &c.Fulfillment.Dir }),

	"ledger.dir":                  setString(func(c *Config) *string { return &c.Ledger.Dir }),
	"ledger.include_transactions": setBool(func(c *Config) *bool { return &c.Ledger.IncludeTransactions }),
	"ledger.account":              setString(func(c *Config) *string { return &c.Ledger.Account }),
	"ledger.class":                setString(func(c *Config) *string { return &c.Ledger.Class }),
	"quickbooks.iif.dir":          setString(func(c *Config) *string { return &c.Ledger.Dir }),

	"tabular.dir":            setString(func(c *Config) *string { return &c.Tabular.Dir }),
	"tabular.file_name":      setString(func(c *Config) *string { return &c.Tabular.FileName }),
	"tabular.account":        setString(func(c *Config) *string { return &c.Tabular.Account }),
	"tabular.sales_tax_item": setString(func(c *Config) *string { return &c.Tabular.SalesTaxItem }),
	"tabular.workbook":       setBool(func(c *Config) *bool { return &c.Tabular.Workbook }),
	"tabular.workbook_file":  setString(func(c *Config) *string { return &c.Tabular.WorkbookFile }),
	"quickbooks.csv.dir":     setString(func(c *Config) *string { return &c.Tabular.Dir }),

	"ftp.enabled":  setBool(func(c *Config) *bool { return &c.FTP.Enabled }),
	"ftp.address":  setString(func(c *Config) *string { return &c.FTP.Address }),
	"ftp.username": setString(func(c *Config) *string { return &c.FTP.Username }),
	"ftp.password": setString(func(c *Config) *string { return &c.FTP.Password }),
	"ftp.dir":      setString(func(c *Config) *string { return &c.FTP.Dir }),
	"ftp.timeout":  setDuration(func(c *Config) *time.Duration { return &c.FTP.Timeout }),

	"logging.level":       setString(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":      setString(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":        setString(func(c *Config) *string { return &c.Logging.File }),
	"logging.summary_dir": setString(func(c *Config) *string { return &c.Logging.SummaryDir }),
}

// ApplyOverrides sets each key=value pair on c.
//
// RETURNS:
//   - An error naming the first unknown key or unparsable value.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		set, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unknown configuration key %q", key)
		}
		if err := set(c, overrides[key]); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return nil
}

// ParseArgs turns "key=value" command-line arguments into a map.
func ParseArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", arg)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// OverrideKeys lists the accepted command-line keys.
func OverrideKeys() []string {
	keys := make([]string, 0, len(overrideKeys))
	for k := range overrideKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
