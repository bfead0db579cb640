// =============================================================================
// Order Fulfillment - Export Writer
// =============================================================================
//
// Shared plumbing for the delimited exporters.
//
// ROW FORMAT:
//   - Text fields are double-quoted; embedded quotes are doubled.
//   - Numeric fields are written bare.
//   - Fields are joined by the exporter's delimiter with no trailing delimiter.
//   - Rows end with CRLF.
//
// FILE HANDLING:
//   - Files are only ever appended to.
//   - Parent directories are created when missing.
//   - The header is written only when the file does not exist yet.
//
// =============================================================================

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/citycreek/order-fulfillment/internal/order"
	"github.com/citycreek/order-fulfillment/pkg/utils"
)

const rowEnd = "\r\n"

// Result describes one export.
type Result struct {
	// Path is the file written to.
	Path string

	// Rows is the number of data rows appended.
	Rows int

	// OrderIDs lists the orders that contributed at least one row.
	OrderIDs []int64

	// Created is true when the file was created by this export.
	Created bool
}

// Exporter renders reconciled orders into a file.
type Exporter interface {
	Export(orders []*order.Order) (Result, error)
}

// =============================================================================
// ROW WRITER
// =============================================================================

// rowWriter accumulates delimited rows in memory.
type rowWriter struct {
	delim byte
	buf   bytes.Buffer
	col   int
	rows  int
}

func newRowWriter(delim byte) *rowWriter {
	return &rowWriter{delim: delim}
}

// text writes a quoted field.
func (w *rowWriter) text(v string) {
	w.sep()
	w.buf.WriteByte('"')
	w.buf.WriteString(strings.ReplaceAll(v, `"`, `""`))
	w.buf.WriteByte('"')
}

// raw writes an unquoted field.
func (w *rowWriter) raw(v string) {
	w.sep()
	w.buf.WriteString(v)
}

func (w *rowWriter) number(v int64) {
	w.raw(fmt.Sprintf("%d", v))
}

func (w *rowWriter) money(d decimal.Decimal) {
	w.raw(money(d))
}

// skip writes an empty field.
func (w *rowWriter) skip() {
	w.sep()
}

func (w *rowWriter) end() {
	w.buf.WriteString(rowEnd)
	w.col = 0
	w.rows++
}

func (w *rowWriter) sep() {
	if w.col > 0 {
		w.buf.WriteByte(w.delim)
	}
	w.col++
}

func (w *rowWriter) data() []byte {
	return w.buf.Bytes()
}

// =============================================================================
// FILE HELPERS
// =============================================================================

// appendWithHeader appends data to path, writing header first when the file
// does not exist.
//
// RETURNS:
//   - Whether the file was created.
//   - An error if the directory or file cannot be written.
func appendWithHeader(path, header string, data []byte) (bool, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return false, err
	}

	created := !utils.FileExists(path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if created && header != "" {
		if _, err := file.WriteString(header); err != nil {
			return created, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}
	if _, err := file.Write(data); err != nil {
		return created, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return created, nil
}

// headerLine joins columns with delim and terminates the row.
func headerLine(delim string, columns ...string) string {
	return strings.Join(columns, delim) + rowEnd
}

// money formats an amount with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// appendID adds id to ids unless it is already the last entry.
func appendID(ids []int64, id int64) []int64 {
	if n := len(ids); n > 0 && ids[n-1] == id {
		return ids
	}
	return append(ids, id)
}
