package site_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsBrowserHeaders(t *testing.T) {
	var got http.Header

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	client := site.NewClient("https://football-logos.cc", "")

	resp, cancel, err := client.Get(context.Background(), ts.URL, time.Second)
	require.NoError(t, err)
	defer cancel()
	resp.Body.Close()

	assert.Equal(t, site.DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "https://football-logos.cc", got.Get("Referer"))
	assert.NotEmpty(t, got.Get("Accept-Language"))
}

func TestGetDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing/" {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/england/">England</a></body></html>`))
	}))
	defer ts.Close()

	client := site.NewClientWithHTTP(ts.Client(), "")

	doc, err := client.GetDocument(context.Background(), ts.URL+"/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("a[href]").Length())

	_, err = client.GetDocument(context.Background(), ts.URL+"/missing/", time.Second)
	require.Error(t, err)
	assert.True(t, logo.IsStatus(err, http.StatusNotFound))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := site.Sleep(ctx, time.Minute)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep_Zero(t *testing.T) {
	assert.NoError(t, site.Sleep(context.Background(), 0))
}
