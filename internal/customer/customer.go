// =============================================================================
// Order Fulfillment - Customer Module
// =============================================================================
//
// This module holds the customer model and the registry that maps customer
// IDs to customers. The registry is built once from the customers XML and is
// read-only while orders are reconciled and exported.
//
// SKIPPED RECORDS:
//   - Records without a CustomerID
//   - Guest checkouts, marked by a field holding "anonymous_user"
//
// =============================================================================

package customer

import (
	"errors"
	"strings"

	"github.com/citycreek/order-fulfillment/internal/types"
)

// AnonymousUser marks a guest checkout with no usable identity.
const AnonymousUser = "anonymous_user"

// ErrMissingID is returned for a customer record without a CustomerID.
var ErrMissingID = errors.New("customer record has no CustomerID")

// ErrAnonymous is returned for a guest-checkout customer record.
var ErrAnonymous = errors.New("anonymous customer record")

// XMLColumns are the customer columns requested from the store.
const XMLColumns = "CustomerID,FirstName,LastName,CompanyName,BillingAddress1,BillingAddress2," +
	"City,State,PostalCode,EmailAddress,PhoneNumber,FaxNumber,CustomerType"

// =============================================================================
// CUSTOMER
// =============================================================================

// Customer is a registered store customer.
type Customer struct {
	ID              string
	FirstName       string
	LastName        string
	CompanyName     string
	BillingAddress1 string
	BillingAddress2 string
	City            string
	State           string
	PostalCode      string
	EmailAddress    string
	PhoneNumber     string
	FaxNumber       string
	CustomerType    string
}

// FromRecord builds a Customer from a parsed customer record.
func FromRecord(rec types.Record) (*Customer, error) {
	if rec.ContainsValue(AnonymousUser) {
		return nil, ErrAnonymous
	}

	id := strings.TrimSpace(rec.Get("CustomerID"))
	if id == "" {
		return nil, ErrMissingID
	}

	return &Customer{
		ID:              id,
		FirstName:       rec.Get("FirstName"),
		LastName:        rec.Get("LastName"),
		CompanyName:     rec.Get("CompanyName"),
		BillingAddress1: rec.Get("BillingAddress1"),
		BillingAddress2: rec.Get("BillingAddress2"),
		City:            rec.Get("City"),
		State:           rec.Get("State"),
		PostalCode:      rec.Get("PostalCode"),
		EmailAddress:    rec.Get("EmailAddress"),
		PhoneNumber:     rec.Get("PhoneNumber"),
		FaxNumber:       rec.Get("FaxNumber"),
		CustomerType:    rec.Get("CustomerType"),
	}, nil
}

// CustomerName is the company name when present, else "first last".
// The ledger keys customers by this name, so the tabular import's
// "Customer: Job" column must use it too.
func (c *Customer) CustomerName() string {
	if strings.TrimSpace(c.CompanyName) != "" {
		return c.CompanyName
	}
	return c.FirstLastName()
}

// FirstLastName returns "first last" trimmed.
func (c *Customer) FirstLastName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry maps customer IDs to customers.
type Registry struct {
	customers map[string]*Customer
	skipped   int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{customers: make(map[string]*Customer)}
}

// Register adds the customer described by rec. Invalid and anonymous records
// are skipped and reported through the returned error; the registry is left
// unchanged in that case.
func (r *Registry) Register(rec types.Record) error {
	c, err := FromRecord(rec)
	if err != nil {
		r.skipped++
		return err
	}
	r.customers[c.ID] = c
	return nil
}

// RegisterAll registers every record and returns the number added.
func (r *Registry) RegisterAll(recs []types.Record) int {
	added := 0
	for _, rec := range recs {
		if r.Register(rec) == nil {
			added++
		}
	}
	return added
}

// Lookup returns the customer for id.
func (r *Registry) Lookup(id string) (*Customer, bool) {
	c, ok := r.customers[strings.TrimSpace(id)]
	return c, ok
}

// Len returns the number of registered customers.
func (r *Registry) Len() int {
	return len(r.customers)
}

// Skipped returns the number of records rejected by Register.
func (r *Registry) Skipped() int {
	return r.skipped
}
