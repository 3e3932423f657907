package encyclopedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/knowledge"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultRestBaseURL = "https://en.wikipedia.org/api/rest_v1"
	DefaultAPIBaseURL  = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent   = "voice-assistant-be/1.0 (calendar assistant)"
	DefaultTimeout     = 10 * time.Second

	// MaxCandidates is how many search hits are offered for disambiguation.
	MaxCandidates = 5
)

var (
	ErrAmbiguousTitle = errors.New("encyclopedia: title is a disambiguation page")
	ErrNoSummary      = errors.New("encyclopedia: page has no summary text")
	ErrTitleNotFound  = errors.New("encyclopedia: title not found")
	ErrSearchFailed   = errors.New("encyclopedia: search failed")
	ErrNoResults      = errors.New("encyclopedia: search returned no results")
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

type Config struct {
	RestBaseURL string
	APIBaseURL  string
	UserAgent   string
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		RestBaseURL: DefaultRestBaseURL,
		APIBaseURL:  DefaultAPIBaseURL,
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
	}
}

// Summary is the normalized result of a page lookup.
type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Candidate is one search hit offered for disambiguation. Position in the list matters.
type Candidate struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResult holds either a Summary or, when Disambiguation is set, the candidates to choose from.
type SearchResult struct {
	Summary        *Summary    `json:"summary,omitempty"`
	Disambiguation bool        `json:"disambiguation"`
	Term           string      `json:"term,omitempty"`
	Candidates     []Candidate `json:"candidates,omitempty"`
}

type Client struct {
	cfg    Config
	http   *http.Client
	cache  knowledge.Cache[Summary]
	logger logger.ILogger
	tracer trace.Tracer
}

func NewClient(cfg Config, cache knowledge.Cache[Summary], log logger.ILogger) *Client {
	def := DefaultConfig()
	if cfg.RestBaseURL == "" {
		cfg.RestBaseURL = def.RestBaseURL
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = def.APIBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cache == nil {
		cache = knowledge.NewMemoryCache[Summary](knowledge.DefaultTTL)
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: log,
		tracer: otel.Tracer("encyclopedia"),
	}
}

type pageSummaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// FetchSummary looks a page up by exact title. Disambiguation pages fail with
// ErrAmbiguousTitle; use SearchAndFetch to resolve those.
func (c *Client) FetchSummary(ctx context.Context, title string) (*Summary, error) {
	normalized := strings.Join(strings.Fields(title), "_")
	cacheKey := "title:" + strings.ToLower(normalized)

	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		return &cached, nil
	}

	ctx, span := c.tracer.Start(ctx, "encyclopedia.FetchSummary", trace.WithAttributes(attribute.String("title", normalized)))
	defer span.End()

	endpoint := strings.TrimRight(c.cfg.RestBaseURL, "/") + "/page/summary/" + url.PathEscape(normalized)

	var page pageSummaryResponse
	status, err := c.getJSON(ctx, endpoint, &page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("fetch summary %q: %w", title, err)
	}
	if status < 200 || status > 299 {
		span.SetStatus(codes.Error, "not found")
		return nil, fmt.Errorf("%w: %q (status %d)", ErrTitleNotFound, title, status)
	}

	if strings.Contains(strings.ToLower(page.Type), "disambiguation") {
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousTitle, title)
	}
	if strings.TrimSpace(page.Extract) == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoSummary, title)
	}

	out := Summary{Title: page.Title, Summary: page.Extract}
	if out.Title == "" {
		out.Title = title
	}
	c.cache.Set(ctx, cacheKey, out)
	return &out, nil
}

// SearchAndFetch runs a free-text search. A single hit is resolved to its summary;
// several hits come back as candidates without fetching any summary.
func (c *Client) SearchAndFetch(ctx context.Context, term string) (*SearchResult, error) {
	cacheKey := "search:" + strings.ToLower(strings.TrimSpace(term))
	if cached, ok := c.cache.Get(ctx, cacheKey); ok {
		return &SearchResult{Summary: &cached}, nil
	}

	ctx, span := c.tracer.Start(ctx, "encyclopedia.SearchAndFetch", trace.WithAttributes(attribute.String("term", term)))
	defer span.End()

	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", term)
	q.Set("format", "json")
	q.Set("srlimit", fmt.Sprint(MaxCandidates))

	var res searchResponse
	status, err := c.getJSON(ctx, c.cfg.APIBaseURL+"?"+q.Encode(), &res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if status < 200 || status > 299 {
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, status)
	}

	hits := res.Query.Search
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoResults, term)
	}
	if len(hits) > MaxCandidates {
		hits = hits[:MaxCandidates]
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))

	if len(hits) == 1 {
		summary, err := c.FetchSummary(ctx, hits[0].Title)
		if err != nil {
			return nil, err
		}
		c.cache.Set(ctx, cacheKey, *summary)
		return &SearchResult{Summary: summary}, nil
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, Candidate{Title: h.Title, Snippet: StripHTML(h.Snippet)})
	}
	return &SearchResult{Disambiguation: true, Term: term, Candidates: candidates}, nil
}

// Lookup tries the exact title first and falls back to search on any failure.
// When both fail the returned error wraps both causes.
func (c *Client) Lookup(ctx context.Context, term string) (*SearchResult, error) {
	summary, fetchErr := c.FetchSummary(ctx, term)
	if fetchErr == nil {
		return &SearchResult{Summary: summary}, nil
	}

	c.logger.Debug("ENCYCLOPEDIA", "Direct lookup failed, searching", map[string]interface{}{
		"term":  term,
		"error": fetchErr.Error(),
	})

	result, searchErr := c.SearchAndFetch(ctx, term)
	if searchErr != nil {
		err := fmt.Errorf("lookup %q: %w", term, errors.Join(fetchErr, searchErr))
		c.logger.Warn("ENCYCLOPEDIA", "Lookup failed", map[string]interface{}{"term": term, "error": err.Error()})
		return nil, err
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// StripHTML removes markup from search snippets.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagPattern.ReplaceAllString(s, "")))
}
