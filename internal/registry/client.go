// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry executes formal queries against the Swiss legislative
// registry (Fedlex), filters results for legal applicability, and fetches
// article-addressable full texts with language fallback.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lex-engine/internal/httputil"
	"github.com/pdiddy/lex-engine/internal/jolux"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// ErrQueryExecution marks a registry query that failed after exhausting
// the retry budget. The structured path is skipped when this surfaces.
var ErrQueryExecution = errors.New("registry query execution failed")

// ErrFetch marks a record whose full text could not be fetched in any
// language variant. The record stays usable as metadata only.
var ErrFetch = errors.New("full text unavailable")

const defaultEndpoint = "https://fedlex.data.admin.ch/sparqlendpoint"

// nowFunc returns the reference time for applicability filtering. Tests
// override this to pin the evaluation date.
var nowFunc = time.Now

// defaultLanguageOrder is the full-text fallback order when the
// configuration does not set one.
var defaultLanguageOrder = []types.Language{
	types.LangGerman, types.LangFrench, types.LangItalian, types.LangRomansh,
}

// Client queries the registry endpoint. One Client may serve concurrent
// queries; its only shared state is the bounded TTL cache.
type Client struct {
	endpoint  string
	http      *http.Client
	cfg       types.RegistryConfig
	log       *logrus.Logger
	records   *ttlCache // formal query text -> []types.LegislativeRecord
	fulltexts *ttlCache // work URI + language -> *types.FullText
	fetches   atomic.Int64
}

// NewClient builds a registry client. Zero config fields fall back to
// the Fedlex endpoint, a 30 s timeout, the de/fr/it/rm fallback order,
// and a 15 minute, 64 entry cache.
func NewClient(cfg types.RegistryConfig, log *logrus.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.LanguageOrder) == 0 {
		cfg.LanguageOrder = defaultLanguageOrder
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if log == nil {
		log = logrus.New()
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		http:      &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		log:       log,
		records:   newTTLCache(cfg.CacheTTL, cfg.CacheSize),
		fulltexts: newTTLCache(cfg.CacheTTL, cfg.CacheSize),
	}
}

// NetworkFetches returns the number of HTTP requests sent to the
// registry so far. Tests use it to verify cache behavior.
func (c *Client) NetworkFetches() int64 {
	return c.fetches.Load()
}

// Execute runs the formal query against the endpoint and returns the
// deduplicated, currently-applicable records. Results are cached by
// query text for the configured TTL; a cache hit performs no network
// call. Endpoint failures after the retry budget wrap ErrQueryExecution.
func (c *Client) Execute(ctx context.Context, fq types.FormalQuery) ([]types.LegislativeRecord, error) {
	if cached, ok := c.records.get(fq.Text); ok {
		return c.applicable(cached.([]types.LegislativeRecord)), nil
	}

	bindings, err := c.runQuery(ctx, jolux.Prefixes+"\n"+fq.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	records := dedupeByWork(bindingsToRecords(bindings, fq.Language))
	c.records.put(fq.Text, records)

	return c.applicable(records), nil
}

// applicable applies the applicability window filter at the current
// reference time. Filtering happens after the cache so entries are never
// tied to a stale "now".
func (c *Client) applicable(records []types.LegislativeRecord) []types.LegislativeRecord {
	now := nowFunc()
	var out []types.LegislativeRecord
	for _, r := range records {
		if r.IsApplicable(now) {
			out = append(out, r)
			continue
		}
		c.log.WithFields(logrus.Fields{
			"work":   r.WorkURI,
			"status": r.Applicability(now),
		}).Debug("record excluded by applicability filter")
	}
	return out
}

// runQuery POSTs a complete SPARQL query and returns the result bindings.
func (c *Client) runQuery(ctx context.Context, query string) ([]binding, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.fetches.Add(1)
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing registry response: %w", err)
	}
	return sr.Results.Bindings, nil
}

// SPARQL JSON results structures.
type sparqlResponse struct {
	Results sparqlResults `json:"results"`
}

type sparqlResults struct {
	Bindings []binding `json:"bindings"`
}

type binding map[string]sparqlTerm

type sparqlTerm struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// value returns the bound value for a variable, or "" when unbound.
func (b binding) value(name string) string {
	return b[name].Value
}

// bindingsToRecords converts result bindings to LegislativeRecords. The
// query projection is fixed by the synthesizer's well-formedness check,
// so the expected variable names are always present for valid results.
func bindingsToRecords(bindings []binding, lang types.Language) []types.LegislativeRecord {
	var records []types.LegislativeRecord
	for _, b := range bindings {
		workURI := b.value("work")
		if workURI == "" {
			continue
		}
		r := types.LegislativeRecord{
			WorkURI:              workURI,
			ConsolidationURI:     b.value("consolidation"),
			Title:                b.value("title"),
			SRNumber:             b.value("sr_number"),
			DateDocument:         parseDate(b.value("date")),
			DateApplicability:    parseDate(b.value("dateApplicability")),
			DateEndApplicability: parseDate(b.value("dateEndApplicability")),
			Language:             lang,
			DocumentURLs:         DocumentURLs(workURI),
		}
		records = append(records, r)
	}
	return records
}

// dedupeByWork keeps the first record per work URI. Result order is
// preserved; the endpoint returns one row per matching expression, so
// duplicates are common.
func dedupeByWork(records []types.LegislativeRecord) []types.LegislativeRecord {
	seen := make(map[string]bool, len(records))
	var out []types.LegislativeRecord
	for _, r := range records {
		if seen[r.WorkURI] {
			continue
		}
		seen[r.WorkURI] = true
		out = append(out, r)
	}
	return out
}

// parseDate parses registry date literals, which come as plain dates or
// full timestamps. The zero time marks an absent value.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
