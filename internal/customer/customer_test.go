package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycreek/order-fulfillment/internal/types"
)

func TestRegistryRegister(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		wantErr error
	}{
		{
			name:   "valid",
			fields: map[string]string{"CustomerID": "42", "FirstName": "Jane"},
		},
		{
			name:    "missing id",
			fields:  map[string]string{"FirstName": "Nobody"},
			wantErr: ErrMissingID,
		},
		{
			name:    "blank id",
			fields:  map[string]string{"CustomerID": "  "},
			wantErr: ErrMissingID,
		},
		{
			name:    "anonymous email",
			fields:  map[string]string{"CustomerID": "7", "EmailAddress": AnonymousUser},
			wantErr: ErrAnonymous,
		},
		{
			name:    "anonymous id",
			fields:  map[string]string{"CustomerID": AnonymousUser},
			wantErr: ErrAnonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(types.NewRecord(tt.fields))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, reg.Len())
				assert.Equal(t, 1, reg.Skipped())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, reg.Len())
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	added := reg.RegisterAll([]types.Record{
		types.NewRecord(map[string]string{"CustomerID": "42", "CompanyName": "Acme"}),
		types.NewRecord(map[string]string{"CustomerID": "43", "FirstName": "Jane", "LastName": "Doe"}),
		types.NewRecord(map[string]string{"FirstName": "Skipped"}),
	})
	assert.Equal(t, 2, added)

	c, ok := reg.Lookup("42")
	require.True(t, ok)
	assert.Equal(t, "Acme", c.CustomerName())

	c, ok = reg.Lookup(" 43 ")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", c.CustomerName())

	_, ok = reg.Lookup("99")
	assert.False(t, ok)
}

func TestCustomerNames(t *testing.T) {
	c := &Customer{ID: "1", FirstName: "Jane"}
	assert.Equal(t, "Jane", c.FirstLastName())
	assert.Equal(t, "Jane", c.CustomerName())

	c.CompanyName = "  "
	assert.Equal(t, "Jane", c.CustomerName())
}
