// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lex-engine/internal/httputil"
	"github.com/pdiddy/lex-engine/internal/jolux"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// manifestationQueryTmpl resolves the XML download link for one
// consolidation in one language.
const manifestationQueryTmpl = `SELECT ?xml_link WHERE {
    <%s> jolux:isRealizedBy ?expression .

    ?expression jolux:language %s ;
                jolux:isEmbodiedBy ?manifestation .

    ?manifestation jolux:format %s ;
                   jolux:isExemplifiedBy ?xml_link .
}
LIMIT 1`

// FetchFullText fetches and parses the record's full text, preferring
// the given language and falling back through the configured language
// order. A (work URI, language) cache hit performs no network calls.
// When no variant is fetchable the error wraps ErrFetch and the record
// should be kept as metadata only.
func (c *Client) FetchFullText(ctx context.Context, rec types.LegislativeRecord, preferred types.Language) (*types.FullText, error) {
	if rec.ConsolidationURI == "" {
		return nil, fmt.Errorf("%w: record %s has no consolidation", ErrFetch, rec.WorkURI)
	}

	var lastErr error
	for _, lang := range c.languageOrder(preferred) {
		key := rec.WorkURI + "|" + string(lang)
		if cached, ok := c.fulltexts.get(key); ok {
			return cached.(*types.FullText), nil
		}

		ft, err := c.fetchLanguage(ctx, rec, lang)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.log.WithFields(logrus.Fields{
				"work":     rec.WorkURI,
				"language": lang,
			}).Debugf("full text variant unavailable: %v", err)
			continue
		}

		c.fulltexts.put(key, ft)
		return ft, nil
	}

	return nil, fmt.Errorf("%w: no fetchable language variant for %s: %v", ErrFetch, rec.WorkURI, lastErr)
}

// languageOrder returns the fallback order with the preferred language
// moved to the front.
func (c *Client) languageOrder(preferred types.Language) []types.Language {
	order := make([]types.Language, 0, len(c.cfg.LanguageOrder)+1)
	if preferred.Valid() {
		order = append(order, preferred)
	}
	for _, l := range c.cfg.LanguageOrder {
		if l != preferred {
			order = append(order, l)
		}
	}
	return order
}

// fetchLanguage resolves the manifestation URL and downloads one
// language variant.
func (c *Client) fetchLanguage(ctx context.Context, rec types.LegislativeRecord, lang types.Language) (*types.FullText, error) {
	lookup := fmt.Sprintf(manifestationQueryTmpl, rec.ConsolidationURI, jolux.LanguageURI(lang), jolux.XMLFormatURI)

	bindings, err := c.runQuery(ctx, jolux.Prefixes+"\n"+lookup)
	if err != nil {
		return nil, fmt.Errorf("manifestation lookup: %w", err)
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("no XML manifestation for language %s", lang)
	}
	xmlURL := bindings[0].value("xml_link")
	if xmlURL == "" {
		return nil, fmt.Errorf("manifestation lookup returned empty link")
	}

	articles, err := c.downloadArticles(ctx, xmlURL)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("document %s contains no addressable articles", xmlURL)
	}

	return &types.FullText{
		WorkURI:          rec.WorkURI,
		ConsolidationURI: rec.ConsolidationURI,
		Language:         lang,
		SourceURL:        xmlURL,
		Articles:         articles,
	}, nil
}

// downloadArticles fetches the XML document and parses it into
// addressable article nodes.
func (c *Client) downloadArticles(ctx context.Context, xmlURL string) ([]types.ArticleNode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xmlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.fetches.Add(1)
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("downloading document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document download returned HTTP %d", resp.StatusCode)
	}

	articles, err := parseArticles(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", xmlURL, err)
	}
	return articles, nil
}

// DocumentURLs constructs the canonical browser URLs of a work for all
// publication languages from its data URI.
func DocumentURLs(workURI string) map[types.Language]string {
	base := strings.Replace(workURI,
		"https://fedlex.data.admin.ch", "https://www.fedlex.admin.ch", 1)

	urls := make(map[types.Language]string, len(defaultLanguageOrder))
	for _, lang := range defaultLanguageOrder {
		urls[lang] = base + "/" + string(lang)
	}
	return urls
}
