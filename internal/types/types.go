// =============================================================================
// Order Fulfillment - Shared Types
// =============================================================================
//
// This package contains the flat record types produced by the XML reader and
// consumed by the customer and order models. Types defined here are used by:
//   - xmlreader
//   - customer
//   - order
//
// A Record is one parsed XML leaf-element group: the element names become
// keys and the trimmed text content becomes the value.
//
// =============================================================================

package types

import (
	"sort"
	"strings"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is a flat, string-keyed set of field values for one parsed entity.
// Key order is irrelevant.
type Record struct {
	fields map[string]string
}

// NewRecord creates a Record, optionally seeded with the given fields.
func NewRecord(fields map[string]string) Record {
	r := Record{fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

// Set stores a value, replacing any existing value for the key.
func (r *Record) Set(key, value string) {
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	r.fields[key] = value
}

// Get returns the value for key, or "" when absent.
func (r Record) Get(key string) string {
	return r.fields[key]
}

// Lookup returns the value for key and whether the key was present.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present with a non-blank value.
func (r Record) Has(key string) bool {
	return strings.TrimSpace(r.fields[key]) != ""
}

// FirstOf returns the first non-blank value among keys.
func (r Record) FirstOf(keys ...string) string {
	for _, k := range keys {
		if r.Has(k) {
			return r.fields[k]
		}
	}
	return ""
}

// Merge copies fields from other that are not already present in r.
// Existing values are never overwritten.
func (r *Record) Merge(other Record) {
	for k, v := range other.fields {
		if _, exists := r.fields[k]; exists {
			continue
		}
		r.Set(k, v)
	}
}

// ContainsValue reports whether any field holds exactly value.
func (r Record) ContainsValue(value string) bool {
	for _, v := range r.fields {
		if v == value {
			return true
		}
	}
	return false
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// ORDER RECORD
// =============================================================================

// OrderRecord is one parsed <Orders> element: the order-level fields plus one
// record per nested <OrderDetails> element, in document order.
type OrderRecord struct {
	// Header holds the order-level fields (OrderID, CustomerID, Ship*, ...).
	Header Record

	// Lines holds the order-detail records (ProductCode, Quantity, ...).
	Lines []Record
}
