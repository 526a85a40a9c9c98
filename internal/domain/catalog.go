package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalCodes is the fixed set of ISO 3166-2:CA province and territory
// codes. Every code a catalog entry maps to must belong to this set.
var CanonicalCodes = []string{
	"CA-AB", "CA-BC", "CA-MB", "CA-NB", "CA-NL", "CA-NS", "CA-NT",
	"CA-NU", "CA-ON", "CA-PE", "CA-QC", "CA-SK", "CA-YT",
}

// CatalogEntry maps one free-text label to its canonical code(s). A
// single-province entry carries one code; a group entry ("Maritimes")
// carries the constituent set.
type CatalogEntry struct {
	Label string   `json:"label"`
	Codes []string `json:"codes"`
}

// Catalog resolves free-text province labels to canonical codes. It is
// built once at startup and read-only afterwards; construction rejects
// any token mapped by two different entries, so lookup ambiguity cannot
// arise at runtime.
type Catalog struct {
	byToken map[string][]string
}

// NewCatalog builds a Catalog from entries, validating that every label is
// non-empty, every code is canonical, and no folded token appears in more
// than one entry.
func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	canonical := make(map[string]struct{}, len(CanonicalCodes))
	for _, c := range CanonicalCodes {
		canonical[c] = struct{}{}
	}

	byToken := make(map[string][]string, len(entries))
	for _, e := range entries {
		token := foldLabel(e.Label)
		if token == "" {
			return nil, fmt.Errorf("catalog: empty label")
		}
		if _, dup := byToken[token]; dup {
			return nil, fmt.Errorf("catalog: ambiguous label %q mapped by more than one entry", e.Label)
		}
		if len(e.Codes) == 0 {
			return nil, fmt.Errorf("catalog: label %q has no codes", e.Label)
		}

		codes := make([]string, len(e.Codes))
		copy(codes, e.Codes)
		for _, c := range codes {
			if _, ok := canonical[c]; !ok {
				return nil, fmt.Errorf("catalog: label %q maps to non-canonical code %q", e.Label, c)
			}
		}
		sort.Strings(codes)
		byToken[token] = codes
	}

	return &Catalog{byToken: byToken}, nil
}

// LoadCatalogFile reads catalog entries from a JSON file. The catalog is a
// static configuration artifact: adding a label or spelling is a config
// change, not a code change.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return NewCatalog(entries)
}

// Resolve maps a raw province-label string to canonical codes. The label is
// split on commas; each trimmed token is looked up case-insensitively and
// diacritic-insensitively; resolved codes are unioned and deduplicated.
// Tokens that match no entry are returned as UnknownRegionErrors (with Line
// left zero for the caller to fill); the codes slice is empty when nothing
// resolved.
func (c *Catalog) Resolve(label string) ([]string, []UnknownRegionError) {
	var unknown []UnknownRegionError
	union := make(map[string]struct{})

	for _, part := range strings.Split(label, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		codes, ok := c.byToken[foldLabel(token)]
		if !ok {
			unknown = append(unknown, UnknownRegionError{Token: token})
			continue
		}
		for _, code := range codes {
			union[code] = struct{}{}
		}
	}

	if len(union) == 0 {
		return nil, unknown
	}
	codes := make([]string, 0, len(union))
	for code := range union {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, unknown
}

// foldLabel lowercases a token and strips diacritics so that "Québec",
// "QUEBEC", and "quebec" all produce the same lookup key.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// DefaultCatalog returns the built-in label table: two-letter abbreviations,
// full province names, and the multi-province group labels found in the
// case data, including the recurring misspellings of "Prairies".
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultEntries)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

var defaultEntries = []CatalogEntry{
	// Abbreviations.
	{Label: "AB", Codes: []string{"CA-AB"}},
	{Label: "BC", Codes: []string{"CA-BC"}},
	{Label: "MB", Codes: []string{"CA-MB"}},
	{Label: "NB", Codes: []string{"CA-NB"}},
	{Label: "NL", Codes: []string{"CA-NL"}},
	{Label: "NS", Codes: []string{"CA-NS"}},
	{Label: "NT", Codes: []string{"CA-NT"}},
	{Label: "NU", Codes: []string{"CA-NU"}},
	{Label: "ON", Codes: []string{"CA-ON"}},
	{Label: "PE", Codes: []string{"CA-PE"}},
	{Label: "QC", Codes: []string{"CA-QC"}},
	{Label: "SK", Codes: []string{"CA-SK"}},
	{Label: "YT", Codes: []string{"CA-YT"}},

	// Full names.
	{Label: "Alberta", Codes: []string{"CA-AB"}},
	{Label: "British Columbia", Codes: []string{"CA-BC"}},
	{Label: "Manitoba", Codes: []string{"CA-MB"}},
	{Label: "New Brunswick", Codes: []string{"CA-NB"}},
	{Label: "Newfoundland and Labrador", Codes: []string{"CA-NL"}},
	{Label: "Nova Scotia", Codes: []string{"CA-NS"}},
	{Label: "Northwest Territories", Codes: []string{"CA-NT"}},
	{Label: "Nunavut", Codes: []string{"CA-NU"}},
	{Label: "Ontario", Codes: []string{"CA-ON"}},
	{Label: "Prince Edward Island", Codes: []string{"CA-PE"}},
	{Label: "Quebec", Codes: []string{"CA-QC"}},
	{Label: "Saskatchewan", Codes: []string{"CA-SK"}},
	{Label: "Yukon", Codes: []string{"CA-YT"}},

	// Group labels. "Prairies" appears misspelled several ways in the
	// source case files; all spellings resolve to the same set.
	{Label: "Maritimes", Codes: []string{"CA-NB", "CA-NS", "CA-PE"}},
	{Label: "Prairies", Codes: []string{"CA-AB", "CA-SK", "CA-MB"}},
	{Label: "Priaries", Codes: []string{"CA-AB", "CA-SK", "CA-MB"}},
	{Label: "Priaires", Codes: []string{"CA-AB", "CA-SK", "CA-MB"}},
	{Label: "Praries", Codes: []string{"CA-AB", "CA-SK", "CA-MB"}},
	{Label: "Praires", Codes: []string{"CA-AB", "CA-SK", "CA-MB"}},
}
