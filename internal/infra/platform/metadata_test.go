package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

/* ──── FetchPreview ──── */

func TestMetadataClient_FetchPreview(t *testing.T) {
	t.Run("TC-1: should extract OpenGraph metadata", func(t *testing.T) {
		// Arrange
		var gotUserAgent atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserAgent.Store(r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
  <meta property="og:title" content="  Spring Release  ">
  <meta property="og:description" content="Faster dashboards and new integrations.">
  <meta property="og:image" content="https://example.com/cover.png">
  <meta property="og:site_name" content="Example Blog">
  <title>Page Title Ignored</title>
</head>
<body></body>
</html>`)
		}))
		defer server.Close()

		metadata := NewMetadataClient(newTestClient(t))

		// Act
		preview, err := metadata.FetchPreview(context.Background(), server.URL)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if preview.Title != "Spring Release" {
			t.Errorf("expected trimmed og:title, got %q", preview.Title)
		}
		if preview.Description != "Faster dashboards and new integrations." {
			t.Errorf("expected og:description, got %q", preview.Description)
		}
		if preview.ImageURL != "https://example.com/cover.png" {
			t.Errorf("expected og:image, got %q", preview.ImageURL)
		}
		if preview.SiteName != "Example Blog" {
			t.Errorf("expected og:site_name, got %q", preview.SiteName)
		}
		if ua := gotUserAgent.Load(); ua != userAgent {
			t.Errorf("expected User-Agent %q, got %v", userAgent, ua)
		}
	})

	t.Run("TC-2: should fall back to title tag and meta description", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html>
<head>
  <title>  Fallback Title  </title>
  <meta name="description" content="Fallback description.">
</head>
<body></body>
</html>`)
		}))
		defer server.Close()

		metadata := NewMetadataClient(newTestClient(t))

		// Act
		preview, err := metadata.FetchPreview(context.Background(), server.URL)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if preview.Title != "Fallback Title" {
			t.Errorf("expected title element fallback, got %q", preview.Title)
		}
		if preview.Description != "Fallback description." {
			t.Errorf("expected meta description fallback, got %q", preview.Description)
		}
		if preview.ImageURL != "" || preview.SiteName != "" {
			t.Errorf("expected empty image and site name, got %q and %q", preview.ImageURL, preview.SiteName)
		}
	})

	t.Run("TC-3: should return empty fields for a page without metadata", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><head></head><body><p>hello</p></body></html>`)
		}))
		defer server.Close()

		metadata := NewMetadataClient(newTestClient(t))

		// Act
		preview, err := metadata.FetchPreview(context.Background(), server.URL)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if preview == nil {
			t.Fatal("expected non-nil preview")
		}
		if *preview != (LinkPreview{}) {
			t.Errorf("expected empty preview, got %+v", preview)
		}
	})

	t.Run("TC-4: should fail without retrying when the page returns 404", func(t *testing.T) {
		// Arrange
		requestCount := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		metadata := NewMetadataClient(newTestClient(t))

		// Act
		_, err := metadata.FetchPreview(context.Background(), server.URL+"/gone")

		// Assert
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "fetch preview page") {
			t.Errorf("expected fetch error, got %v", err)
		}
		if got := atomic.LoadInt32(&requestCount); got != 1 {
			t.Errorf("expected 1 request for a 404, got %d", got)
		}
	})

	t.Run("TC-5: should reject unusable URLs before any request", func(t *testing.T) {
		// Arrange
		metadata := NewMetadataClient(newTestClient(t))

		// Act & Assert - non-http scheme
		_, err := metadata.FetchPreview(context.Background(), "ftp://example.com/file")
		if err == nil || !strings.Contains(err.Error(), "unsupported preview url scheme") {
			t.Errorf("expected scheme error, got %v", err)
		}

		// Act & Assert - no host
		_, err = metadata.FetchPreview(context.Background(), "http://")
		if err == nil || !strings.Contains(err.Error(), "has no host") {
			t.Errorf("expected missing-host error, got %v", err)
		}

		// Act & Assert - unparsable
		_, err = metadata.FetchPreview(context.Background(), "://missing-scheme")
		if err == nil || !strings.Contains(err.Error(), "parse preview url") {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("TC-6: should register a circuit breaker keyed by target host", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><head><title>ok</title></head></html>`)
		}))
		defer server.Close()

		client := newTestClient(t)
		metadata := NewMetadataClient(client)

		// Act
		_, err := metadata.FetchPreview(context.Background(), server.URL)

		// Assert
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := client.Breakers().Lookup("preview:" + serverHost(t, server)); !ok {
			t.Error("expected a breaker registered for the preview host")
		}
	})
}

func TestNewMetadataClient(t *testing.T) {
	t.Run("should create a new MetadataClient instance", func(t *testing.T) {
		// Act
		metadata := NewMetadataClient(newTestClient(t))

		// Assert
		if metadata == nil {
			t.Fatal("expected non-nil metadata client")
		}
	})
}
