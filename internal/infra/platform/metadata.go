package platform

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// LinkPreview holds the metadata extracted from a post's landing page,
// used to show editors what receivers will unfurl.
type LinkPreview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// MetadataClient fetches link metadata (OpenGraph tags with plain HTML
// fallbacks) for post landing URLs. Fetches are dispatched through the shared
// Client, keyed per target host, so preview lookups respect the same cooldowns
// as deliveries to that host.
type MetadataClient struct {
	client *Client
}

// NewMetadataClient creates a MetadataClient over the shared platform client.
func NewMetadataClient(client *Client) *MetadataClient {
	return &MetadataClient{client: client}
}

// userAgent identifies preview fetches to target sites.
const userAgent = "CampaignRelayBot/1.0"

// FetchPreview fetches rawURL and extracts its link preview metadata.
//
// Extraction order per field:
//   - Title: og:title, then the <title> element
//   - Description: og:description, then meta[name="description"]
//   - ImageURL: og:image
//   - SiteName: og:site_name
//
// Missing fields are left empty; only fetch and parse failures return an
// error. Only http and https URLs are accepted.
func (m *MetadataClient) FetchPreview(ctx context.Context, rawURL string) (*LinkPreview, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse preview url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported preview url scheme: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("preview url %q has no host", rawURL)
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Fetching link preview",
		slog.String("request_id", requestID),
		slog.String("host", parsed.Host))

	header := http.Header{}
	header.Set("User-Agent", userAgent)

	service := "preview:" + parsed.Host
	body, err := m.client.Get(ctx, service, rawURL, header)
	if err != nil {
		return nil, fmt.Errorf("fetch preview page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	preview := &LinkPreview{
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		ImageURL:    metaProperty(doc, "og:image"),
		SiteName:    metaProperty(doc, "og:site_name"),
	}

	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		preview.Description = metaName(doc, "description")
	}

	if preview.Title == "" && preview.Description == "" {
		slog.Debug("preview page carries no usable metadata",
			slog.String("request_id", requestID),
			slog.String("host", parsed.Host))
	}

	return preview, nil
}

// metaProperty returns the trimmed content of <meta property="..."> or "".
func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

// metaName returns the trimmed content of <meta name="..."> or "".
func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().Attr("content")
	return strings.TrimSpace(content)
}
