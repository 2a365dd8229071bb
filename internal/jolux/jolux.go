// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jolux holds constants of the JOLux ontology used by the Swiss
// legislative registry: standard prefixes, language and file-format
// authority URIs.
package jolux

import "github.com/pdiddy/lex-engine/pkg/types"

// Prefixes are the standard declarations prepended to every query sent to
// the registry. Generated queries never carry their own PREFIX lines.
const Prefixes = `PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
PREFIX dct: <http://purl.org/dc/terms/>
PREFIX skos: <http://www.w3.org/2004/02/skos/core#>
PREFIX jolux: <http://data.legilux.public.lu/resource/ontology/jolux#>
PREFIX schema: <http://schema.org/>
`

// XMLFormatURI identifies the XML manifestation format.
const XMLFormatURI = "<http://publications.europa.eu/resource/authority/file-type/XML>"

// languageURIs maps publication languages to their authority URIs.
var languageURIs = map[types.Language]string{
	types.LangGerman:  "<http://publications.europa.eu/resource/authority/language/DEU>",
	types.LangFrench:  "<http://publications.europa.eu/resource/authority/language/FRA>",
	types.LangItalian: "<http://publications.europa.eu/resource/authority/language/ITA>",
	types.LangRomansh: "<http://publications.europa.eu/resource/authority/language/RMH>",
}

// LanguageURI returns the authority URI for a language, defaulting to
// German for unknown codes.
func LanguageURI(lang types.Language) string {
	if uri, ok := languageURIs[lang]; ok {
		return uri
	}
	return languageURIs[types.LangGerman]
}
