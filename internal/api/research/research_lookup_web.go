package research

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

const (
	DefaultWikipediaURL = "https://en.wikipedia.org"
	minDescriptionLen   = 80
)

var citationMarks = regexp.MustCompile(`\[\d+\]`)

var _ Lookup = (*WebEnricher)(nil)

// WebEnricher wraps another Lookup and fills a thin description from the
// place's encyclopedia page. Enrichment failures are logged and ignored.
type WebEnricher struct {
	next    Lookup
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func NewWebEnricher(next Lookup, client *http.Client, baseURL string, logger *slog.Logger) *WebEnricher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	return &WebEnricher{next: next, client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (w *WebEnricher) ResearchPlace(ctx context.Context, p types.Place, region string) (types.PlaceKnowledge, error) {
	k, err := w.next.ResearchPlace(ctx, p, region)
	if err != nil {
		return k, err
	}

	summary, pageURL, err := w.pageSummary(ctx, k.Name)
	if err != nil {
		w.logger.DebugContext(ctx, "Web enrichment skipped", slog.String("place", k.Name), slog.Any("error", err))
		return k, nil
	}
	if len(strings.TrimSpace(k.Description)) < minDescriptionLen {
		k.Description = summary
	}
	if !slices.Contains(k.SourceURLs, pageURL) {
		k.SourceURLs = append(k.SourceURLs, pageURL)
	}
	return k, nil
}

// pageSummary returns the first non-empty paragraph of the page for name.
func (w *WebEnricher) pageSummary(ctx context.Context, name string) (string, string, error) {
	pageURL := w.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "go-itinerary-engine/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	var summary string
	doc.Find("#mw-content-text p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("mw-empty-elt") {
			return true
		}
		text := strings.TrimSpace(citationMarks.ReplaceAllString(s.Text(), ""))
		if text == "" {
			return true
		}
		summary = strings.Join(strings.Fields(text), " ")
		return false
	})
	if summary == "" {
		return "", "", fmt.Errorf("no summary paragraph on %s", pageURL)
	}
	return summary, pageURL, nil
}
