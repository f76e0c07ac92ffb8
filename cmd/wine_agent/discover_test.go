package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/types"
)

func restaurantSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/":       `<a href="/dinner">Dinner</a>`,
		"/dinner": `<h2>Wines by the glass</h2>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverRestaurants(t *testing.T) {
	srv := restaurantSite(t)

	offerings, err := discoverRestaurants(context.Background(), []types.Restaurant{
		{Name: "Sarma", Website: srv.URL + "/"},
		{Name: "Nopa"},
	}, fetch.DiscoverOptions{})
	require.NoError(t, err)
	require.Len(t, offerings, 2)

	assert.Equal(t, types.WineOffering{
		Name:        "Sarma",
		Website:     srv.URL + "/",
		WineMenuURL: srv.URL + "/dinner",
		Status:      string(fetch.StatusMenuPage),
	}, offerings[0])
	assert.Equal(t, string(fetch.StatusNoWebsite), offerings[1].Status)
}

func TestDiscoverRestaurants_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	offerings, err := discoverRestaurants(ctx, []types.Restaurant{{Name: "Sarma"}}, fetch.DiscoverOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, offerings)
}

func TestHomepageRestaurants(t *testing.T) {
	got := homepageRestaurants([]string{"https://a.example"})
	assert.Equal(t, []types.Restaurant{{Name: "https://a.example", Website: "https://a.example"}}, got)
}
