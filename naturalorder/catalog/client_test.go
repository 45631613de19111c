package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Client_Prices(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/cards/lea-54":
			w.Write([]byte(`{"id":"lea-54","name":"Counterspell","prices":{"usd":"3.50","usd_foil":null}}`))
		case "/cards/unknown":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, 16, time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := c.Prices(ctx, "lea-54")
	require.NoError(t, err)
	require.NotNil(t, p.Base)
	assert.Equal(t, 3.5, *p.Base)
	assert.Nil(t, p.Foil, "absent foil price is a valid answer")

	// Second lookup is served from the cache.
	_, err = c.Prices(ctx, "lea-54")
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())

	// An unknown printing yields no prices, not an error.
	p, err = c.Prices(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, p.Base)
	assert.Nil(t, p.Foil)
}

func Test_Client_Autocomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/autocomplete", r.URL.Path)
		w.Write([]byte(`{"data":["Lightning Helix","Lightning Bolt","Chain Lightning"]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, 16, time.Second)
	require.NoError(t, err)

	got, err := c.Autocomplete(context.Background(), "Lightning Bolt")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Lightning Bolt", got[0], "exact name should rank first")
}
