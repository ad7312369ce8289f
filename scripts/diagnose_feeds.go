// Diagnoses the inspiration feeds the curation worker is configured with.
// Feeds come from CURATION_FEEDS (the same "name=url,name=url" format the
// worker reads) or from command-line arguments in the same format.
//
// Output: a summary on stdout, feed_diagnostic_report.json with the raw
// results, and curation_feeds_fixed.env with a corrected CURATION_FEEDS
// value (redirects followed, broken feeds dropped).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedDiagnostic is the result of probing a single inspiration feed.
type FeedDiagnostic struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Status       string `json:"status"` // OK, REDIRECT, HTTP_ERROR, PARSE_ERROR, EMPTY, TIMEOUT
	HTTPCode     int    `json:"http_code,omitempty"`
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	FeedType     string `json:"feed_type,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (d FeedDiagnostic) healthy() bool {
	return d.Status == "OK" || d.Status == "REDIRECT"
}

// Feed is one configured inspiration feed.
type Feed struct {
	Name string
	URL  string
}

func main() {
	feeds := parseFeedArgs(os.Args[1:])
	if len(feeds) == 0 {
		feeds = parseFeedList(os.Getenv("CURATION_FEEDS"))
	}
	if len(feeds) == 0 {
		log.Fatal("no feeds to diagnose: set CURATION_FEEDS or pass name=url arguments")
	}

	log.Printf("diagnosing %d inspiration feeds", len(feeds))

	diagnostics := make([]FeedDiagnostic, 0, len(feeds))
	for i, feed := range feeds {
		log.Printf("[%d/%d] %s", i+1, len(feeds), feed.Name)
		diagnostics = append(diagnostics, diagnoseFeed(feed.Name, feed.URL, 30*time.Second))
		// フィード提供元への負荷を抑えるための間隔
		time.Sleep(500 * time.Millisecond)
	}

	printSummary(diagnostics)
	writeJSONReport(diagnostics)
	writeEnvFixes(diagnostics)
}

// parseFeedArgs parses "name=url" pairs.
func parseFeedArgs(args []string) []Feed {
	var feeds []Feed
	for _, arg := range args {
		if name, feedURL, ok := strings.Cut(arg, "="); ok && name != "" && feedURL != "" {
			feeds = append(feeds, Feed{Name: name, URL: feedURL})
		}
	}
	return feeds
}

// parseFeedList parses the worker's CURATION_FEEDS format: "name=url,name=url".
func parseFeedList(raw string) []Feed {
	if raw == "" {
		return nil
	}
	return parseFeedArgs(strings.Split(raw, ","))
}

func diagnoseFeed(name, url string, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Name: name, URL: url}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "CampaignRelay-Diagnostic/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	diag.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("no response within %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	if final := resp.Request.URL.String(); final != url {
		diag.RedirectURL = final
	}
	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = resp.Status
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	// 取り込みワーカーと同じパーサーで解析する
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.FeedType = feed.FeedType
	diag.ItemCount = len(feed.Items)
	if feed.UpdatedParsed != nil {
		diag.LatestDate = feed.UpdatedParsed.Format(time.RFC3339)
	} else if len(feed.Items) > 0 && feed.Items[0].PublishedParsed != nil {
		diag.LatestDate = feed.Items[0].PublishedParsed.Format(time.RFC3339)
	}

	switch {
	case diag.ItemCount == 0:
		diag.Status = "EMPTY"
		diag.ErrorMessage = "feed has no items"
	case diag.RedirectURL != "":
		diag.Status = "REDIRECT"
	default:
		diag.Status = "OK"
	}
	return diag
}

func printSummary(diagnostics []FeedDiagnostic) {
	var working int
	for _, d := range diagnostics {
		if d.healthy() {
			working++
		}
	}
	fmt.Printf("\n%d/%d feeds working\n\n", working, len(diagnostics))

	for _, d := range diagnostics {
		if d.healthy() {
			fmt.Printf("  ok    %-20s %s (%d items, %dms)\n", d.Name, d.FeedType, d.ItemCount, d.ResponseTime)
			if d.RedirectURL != "" {
				fmt.Printf("        %-20s redirected to %s\n", "", d.RedirectURL)
			}
		} else {
			fmt.Printf("  FAIL  %-20s %s: %s\n", d.Name, d.Status, d.ErrorMessage)
		}
	}
}

func writeJSONReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.json")
	if err != nil {
		log.Printf("create JSON report: %v", err)
		return
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(diagnostics); err != nil {
		log.Printf("write JSON report: %v", err)
		return
	}
	log.Println("wrote feed_diagnostic_report.json")
}

// writeEnvFixes emits a corrected CURATION_FEEDS value: redirected feeds
// point at their final URL and broken feeds are dropped with a comment.
func writeEnvFixes(diagnostics []FeedDiagnostic) {
	f, err := os.Create("curation_feeds_fixed.env")
	if err != nil {
		log.Printf("create env fixes: %v", err)
		return
	}
	defer func() { _ = f.Close() }()

	fmt.Fprintf(f, "# Corrected CURATION_FEEDS for the worker\n")
	fmt.Fprintf(f, "# Generated: %s\n", time.Now().Format(time.RFC3339))

	var kept []string
	for _, d := range diagnostics {
		switch d.Status {
		case "OK":
			kept = append(kept, d.Name+"="+d.URL)
		case "REDIRECT":
			fmt.Fprintf(f, "# %s: followed redirect to %s\n", d.Name, d.RedirectURL)
			kept = append(kept, d.Name+"="+d.RedirectURL)
		default:
			fmt.Fprintf(f, "# dropped %s (%s): %s\n", d.Name, d.Status, d.ErrorMessage)
		}
	}
	fmt.Fprintf(f, "CURATION_FEEDS=%s\n", strings.Join(kept, ","))

	log.Println("wrote curation_feeds_fixed.env")
}
