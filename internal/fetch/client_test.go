package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "jane", r.URL.Query().Get("Login"))
		w.Write([]byte("<xmldata/>"))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "xml", "customers.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c := NewClient(time.Second, nil)
	n, err := c.Download(ctx, ExpandURL(ts.URL+"/?Login={username}", "jane", "pw", ""), dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("<xmldata/>")), n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<xmldata/>", string(data))
}

func TestDownloadBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "orders.xml")
	_, err := NewClient(time.Second, nil).Download(context.Background(), ts.URL, dest)
	assert.ErrorContains(t, err, "401")
	assert.NoFileExists(t, dest)
}

func TestDownloadDoesNotLeakURL(t *testing.T) {
	_, err := NewClient(time.Second, nil).Download(context.Background(),
		"http://127.0.0.1:1/x?EncryptedPassword=secret", filepath.Join(t.TempDir(), "o.xml"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestExpandURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "named",
			template: "https://s/x?Login={username}&EncryptedPassword={password}&SELECT_Columns={columns}",
			want:     "https://s/x?Login=a%40b.com&EncryptedPassword=p%26w&SELECT_Columns=o.OrderID%2Co.CustomerID",
		},
		{
			name:     "positional",
			template: "https://s/x?Login={0}&EncryptedPassword={1}&SELECT_Columns={2}",
			want:     "https://s/x?Login=a%40b.com&EncryptedPassword=p%26w&SELECT_Columns=o.OrderID%2Co.CustomerID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandURL(tt.template, "a@b.com", "p&w", "o.OrderID,o.CustomerID"))
		})
	}

	assert.NotContains(t, RedactURL("https://s/x?p={password}", "a", ""), "p&w")
	assert.Contains(t, RedactURL("https://s/x?p={password}", "a", ""), "REDACTED")
}
