package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAzure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		href := r.URL.Query().Get("href")
		fmt.Fprintf(w, `{"href": %q}`, href+"?sig=signed")
	}))
	defer srv.Close()

	old := SignEndpoint
	SignEndpoint = srv.URL
	defer func() { SignEndpoint = old }()

	signed, err := SignAzure(context.Background(), srv.Client(), "https://blob.example/f.grib2")
	require.NoError(t, err)
	assert.Equal(t, "https://blob.example/f.grib2?sig=signed", signed)
}

func TestSignAzureServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	old := SignEndpoint
	SignEndpoint = srv.URL
	defer func() { SignEndpoint = old }()

	_, err := SignAzure(context.Background(), srv.Client(), "https://blob.example/f.grib2")
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestSignAzureEmptyHref(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	old := SignEndpoint
	SignEndpoint = srv.URL
	defer func() { SignEndpoint = old }()

	_, err := SignAzure(context.Background(), srv.Client(), "https://blob.example/f.grib2")
	assert.ErrorContains(t, err, "no href")
}
