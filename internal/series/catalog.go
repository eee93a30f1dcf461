package series

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the source layout of a series.
type Kind string

// Supported source layouts.
const (
	KindHTMLTable Kind = "html"
	KindSIDRA     Kind = "sidra"
)

// Definition describes one published series.
type Definition struct {
	// Name is used in object keys and file names (e.g. IGPM).
	Name string
	// StateID is the fixed key under which ingestion state is recorded.
	StateID string
	Kind    Kind
	// Locator is the page URL for HTML series; empty until supplied at run time.
	Locator string
	// TableID is the SIDRA aggregate table for API series.
	TableID int
}

var catalog = map[string]Definition{
	"IGPM":   {Name: "IGPM", StateID: "igpm", Kind: KindHTMLTable},
	"IPCA":   {Name: "IPCA", StateID: "ipca", Kind: KindSIDRA, TableID: 1737},
	"INPC":   {Name: "INPC", StateID: "inpc", Kind: KindSIDRA, TableID: 1736},
	"IPCA15": {Name: "IPCA15", StateID: "ipca15", Kind: KindSIDRA, TableID: 3065},
}

// Lookup returns the catalog definition for a series name (case-insensitive).
func Lookup(name string) (Definition, error) {
	def, ok := catalog[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, fmt.Errorf("unknown series %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return def, nil
}

// Names lists the catalog's series names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
