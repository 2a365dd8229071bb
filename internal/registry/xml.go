// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// parseArticles extracts the addressable article nodes from an Akoma
// Ntoso legislative document. Each <article> carries an eId attribute
// that becomes the node ID; its <num> and <heading> children form the
// heading, and the remaining text content is concatenated with
// normalized whitespace.
func parseArticles(r io.Reader) ([]types.ArticleNode, error) {
	dec := xml.NewDecoder(r)

	var articles []types.ArticleNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "article" {
			continue
		}

		node, err := parseArticle(dec, start)
		if err != nil {
			return nil, err
		}
		if node.ID != "" {
			articles = append(articles, node)
		}
	}
	return articles, nil
}

// parseArticle consumes one <article> element, including nested
// structure, and flattens it into a single node.
func parseArticle(dec *xml.Decoder, start xml.StartElement) (types.ArticleNode, error) {
	node := types.ArticleNode{ID: attr(start, "eId")}

	var (
		text    strings.Builder
		heading strings.Builder
		// nesting count inside the article's <num>/<heading> children
		inHeading int
		depth     = 1
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return node, fmt.Errorf("reading article %s: %w", node.ID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if inHeading > 0 {
				inHeading++
			} else if depth == 2 && (t.Name.Local == "num" || t.Name.Local == "heading") {
				inHeading = 1
			}
		case xml.EndElement:
			depth--
			if inHeading > 0 {
				inHeading--
			}
		case xml.CharData:
			if inHeading > 0 {
				heading.WriteString(string(t))
				heading.WriteByte(' ')
			} else {
				text.WriteString(string(t))
				text.WriteByte(' ')
			}
		}
	}

	node.Heading = normalizeSpace(heading.String())
	node.Text = normalizeSpace(text.String())
	return node, nil
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
