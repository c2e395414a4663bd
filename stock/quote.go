package stock

import "github.com/shopspring/decimal"

// Quote is one resolved and extracted company, ready for display.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Change decimal.Decimal `json:"change"`
	// Volume is display-only, see FormatVolume.
	Volume string `json:"volume"`
}

// Fields are the typed values read off a quote page.
type Fields struct {
	Price  decimal.Decimal
	Change decimal.Decimal
	Volume int64
}

type FailureKind string

const (
	KindSymbolNotFound FailureKind = "symbol_not_found"
	KindLookupFailed   FailureKind = "lookup_failed"
	KindFetchFailed    FailureKind = "fetch_failed"
	KindFieldNotFound  FailureKind = "field_not_found"
	KindParseFailed    FailureKind = "parse_failed"
	KindCanceled       FailureKind = "canceled"
	KindSkipped        FailureKind = "skipped"
)

// Failure reports why a company name produced no Quote.
type Failure struct {
	Name    string      `json:"name"`
	Symbol  string      `json:"symbol,omitempty"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
}

// Result is the outcome of one Tracker run. Quotes keep the input order of
// the names that succeeded.
type Result struct {
	RunID    string    `json:"runId"`
	Quotes   []Quote   `json:"quotes"`
	Failures []Failure `json:"failures"`
}
