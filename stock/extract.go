package stock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Field names carried in the data-field attribute of the quote page.
const (
	FieldPrice  = "regularMarketPrice"
	FieldChange = "regularMarketChange"
	FieldVolume = "regularMarketVolume"
)

const streamerTag = "fin-streamer"

func fieldSelector(field string) string {
	return fmt.Sprintf(`%s[data-field=%q]`, streamerTag, field)
}

// FinStreamerExtractor reads the fin-streamer elements of a quote page.
type FinStreamerExtractor struct {
	// ParenthesesNegative treats "(12.30)" as -12.30. When false the
	// parentheses are dropped and the sign comes from an explicit +/- only.
	ParenthesesNegative bool
}

func (e FinStreamerExtractor) Extract(html, symbol string) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Fields{}, &ParseError{Symbol: symbol, Field: "document", Err: err}
	}

	// all three must be present before anything is parsed
	texts := make(map[string]string, 3)
	for _, field := range []string{FieldPrice, FieldChange, FieldVolume} {
		sel := findField(doc, field, symbol)
		if sel.Length() == 0 {
			return Fields{}, &FieldNotFoundError{Symbol: symbol, Field: field}
		}
		texts[field] = strings.TrimSpace(sel.Text())
	}

	price, err := ParsePrice(texts[FieldPrice])
	if err != nil {
		return Fields{}, &ParseError{Symbol: symbol, Field: FieldPrice, Text: texts[FieldPrice], Err: err}
	}
	change, err := ParseChange(texts[FieldChange], e.ParenthesesNegative)
	if err != nil {
		return Fields{}, &ParseError{Symbol: symbol, Field: FieldChange, Text: texts[FieldChange], Err: err}
	}
	volume, err := ParseVolume(texts[FieldVolume])
	if err != nil {
		return Fields{}, &ParseError{Symbol: symbol, Field: FieldVolume, Text: texts[FieldVolume], Err: err}
	}

	return Fields{Price: price, Change: change, Volume: volume}, nil
}

// findField prefers the element bound to symbol; quote pages also stream
// index and peer tickers with the same field names.
func findField(doc *goquery.Document, field, symbol string) *goquery.Selection {
	if symbol != "" {
		bound := doc.Find(fmt.Sprintf(`%s[data-symbol=%q]`, fieldSelector(field), symbol)).First()
		if bound.Length() > 0 {
			return bound
		}
	}
	return doc.Find(fieldSelector(field)).First()
}

var errNegativePrice = errors.New("price is negative")

// ParsePrice strips thousands separators and rounds to 2 places. A price
// below zero is rejected.
func ParsePrice(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.ReplaceAll(text, ",", ""), "+"))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePrice
	}
	return d.Round(2), nil
}

// ParseChange strips parentheses and thousands separators and rounds to 2
// places. With parenthesesNegative a wrapped unsigned value is negated.
func ParseChange(text string, parenthesesNegative bool) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	wrapped := strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")")

	cleaned := strings.NewReplacer("(", "", ")", "", ",", "").Replace(trimmed)
	cleaned = strings.TrimSpace(cleaned)
	d, err := decimal.NewFromString(strings.TrimPrefix(cleaned, "+"))
	if err != nil {
		return decimal.Zero, err
	}

	explicitSign := strings.HasPrefix(cleaned, "-") || strings.HasPrefix(cleaned, "+")
	if parenthesesNegative && wrapped && !explicitSign {
		d = d.Neg()
	}
	return d.Round(2), nil
}

var errNegativeVolume = errors.New("volume is negative")

// ParseVolume strips thousands separators and parses an integer share count.
func ParseVolume(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(text, ",", ""), 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errNegativeVolume
	}
	return v, nil
}
