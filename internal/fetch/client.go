// Package fetch downloads the store's XML exports.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/citycreek/order-fulfillment/pkg/utils"
)

// Client saves HTTP responses to disk.
type Client struct {
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client whose requests time out after timeout. Requests
// are made once.
func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = timeout
	return &Client{httpClient: httpClient, log: log}
}

// Download GETs rawURL and saves the body to dest, replacing any existing
// file. The parent directory is created if missing. A non-200 response is
// an error and leaves dest untouched.
func (c *Client) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Drop the URL, it carries the password.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := utils.EnsureDir(filepath.Dir(dest)); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("save response: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("replace %s: %w", dest, err)
	}

	c.log.Info("xml downloaded",
		zap.String("file", dest),
		zap.Int64("bytes", n))
	return n, nil
}

// ExpandURL fills a URL template. {username}, {password} and {columns} (or
// the positional {0}, {1} and {2}) are replaced with query-escaped values.
func ExpandURL(template, username, password, columns string) string {
	return strings.NewReplacer(
		"{username}", url.QueryEscape(username),
		"{password}", url.QueryEscape(password),
		"{columns}", url.QueryEscape(columns),
		"{0}", url.QueryEscape(username),
		"{1}", url.QueryEscape(password),
		"{2}", url.QueryEscape(columns),
	).Replace(template)
}

// RedactURL expands template with the password replaced by REDACTED, for
// logging.
func RedactURL(template, username, columns string) string {
	return ExpandURL(template, username, "REDACTED", columns)
}
