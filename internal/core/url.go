package core

import (
	"net/url"
	"strings"
)

const (
	DefaultBillURLBase     = "https://www.legis.iowa.gov/legislation/BillBook"
	DefaultGeneralAssembly = "91"
)

// URLBuilder derives the public bill page from a bill number.
type URLBuilder struct {
	Base            string
	GeneralAssembly string
}

// DefaultURLBuilder points at the Iowa Legislature bill book.
func DefaultURLBuilder() URLBuilder {
	return URLBuilder{Base: DefaultBillURLBase, GeneralAssembly: DefaultGeneralAssembly}
}

// For returns the bill page URL; whitespace is removed from the number,
// so "HF 2011" becomes ba=HF2011.
func (b URLBuilder) For(billNumber string) string {
	base := b.Base
	if base == "" {
		base = DefaultBillURLBase
	}
	ga := b.GeneralAssembly
	if ga == "" {
		ga = DefaultGeneralAssembly
	}
	clean := strings.Join(strings.Fields(billNumber), "")
	return base + "?ba=" + url.QueryEscape(clean) + "&ga=" + url.QueryEscape(ga)
}
