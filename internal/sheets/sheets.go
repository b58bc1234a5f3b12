// Package sheets implements the spreadsheet import normalizer and the export
// builder for a store aggregate. Sheets are matched to entity kinds by
// case-insensitive substring on the sheet name: "barang" (items), "aset"
// (assets), "biaya" (costs).
package sheets

import (
	"errors"
	"strings"
)

var (
	// ErrParseFailure means the workbook binary itself was unreadable. The
	// import leaves the store untouched in that case.
	ErrParseFailure = errors.New("workbook could not be read")
	// ErrSheetNotFound means the workbook has no sheet matching the selected
	// scope.
	ErrSheetNotFound = errors.New("no matching sheet in workbook")
)

// Scope selects which sheets an import or export covers.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeItems  Scope = "items"
	ScopeAssets Scope = "assets"
	ScopeCosts  Scope = "costs"
)

const (
	sheetItems  = "Barang"
	sheetAssets = "Aset"
	sheetCosts  = "Biaya"
)

func (s Scope) keyword() string {
	switch s {
	case ScopeItems:
		return "barang"
	case ScopeAssets:
		return "aset"
	case ScopeCosts:
		return "biaya"
	}
	return ""
}

// ParseScope maps a request parameter to a Scope, defaulting to all.
func ParseScope(s string) Scope {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeItems:
		return ScopeItems
	case ScopeAssets:
		return ScopeAssets
	case ScopeCosts:
		return ScopeCosts
	}
	return ScopeAll
}
