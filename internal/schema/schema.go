// Package schema turns the raw sales CSV into typed OrderRecords.
//
// The loader is strict about the table shape (header must carry every
// required column) and lenient about individual rows: a row that cannot be
// typed is rejected and counted, it never aborts the load. Only a malformed
// header or an input with no parseable rows at all is a SchemaError.
package schema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"esr/internal/model"
)

// Canonical column keys, matched case- and separator-insensitively.
const (
	colOrderID     = "order id"
	colOrderDate   = "order date"
	colCustomer    = "customer name"
	colProduct     = "product name"
	colCategory    = "category"
	colSubCategory = "sub category"
	colRegion      = "region"
	colCity        = "city"
	colPayment     = "payment mode"
	colQuantity    = "quantity"
	colUnitPrice   = "unit price"
	colDiscount    = "discount"
	colSales       = "sales"
	colProfit      = "profit"
)

var requiredColumns = []string{
	colOrderID, colOrderDate, colCustomer, colProduct, colCategory,
	colSubCategory, colRegion, colCity, colPayment, colQuantity,
	colUnitPrice, colDiscount, colSales, colProfit,
}

var dateLayouts = []string{
	"2006-01-02", "2006-01-02 15:04:05", "02/01/2006", "2006/01/02", time.RFC3339,
}

var titleCaser = cases.Title(language.English)

// Rejection records one skipped input row.
type Rejection struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// LoadReport summarizes a load. Rejections are advisory; the caller decides
// whether a partially rejected input is acceptable.
type LoadReport struct {
	RowsLoaded   int         `json:"rowsLoaded"`
	RowsRejected int         `json:"rowsRejected"`
	Encoding     string      `json:"encoding"`
	Rejections   []Rejection `json:"rejections,omitempty"`
}

// LoadFile reads and types a CSV file.
func LoadFile(path string) ([]model.OrderRecord, LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Load(data)
}

// Load types raw CSV bytes into OrderRecords.
func Load(data []byte) ([]model.OrderRecord, LoadReport, error) {
	decoded, enc := decode(data)
	rep := LoadReport{Encoding: enc}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, rep, &model.SchemaError{Reason: "missing header row"}
	}
	idx, err := mapHeader(header)
	if err != nil {
		return nil, rep, err
	}

	var recs []model.OrderRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rep.reject(line, "malformed csv row")
			continue
		}
		rec, reason := parseRow(row, idx)
		if reason != "" {
			rep.reject(line, reason)
			continue
		}
		recs = append(recs, rec)
	}

	rep.RowsLoaded = len(recs)
	if len(recs) == 0 && rep.RowsRejected > 0 {
		return nil, rep, &model.SchemaError{Reason: "no parseable rows"}
	}
	return recs, rep, nil
}

func (r *LoadReport) reject(line int, reason string) {
	r.RowsRejected++
	r.Rejections = append(r.Rejections, Rejection{Line: line, Reason: reason})
}

func mapHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[canonicalKey(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &model.SchemaError{Column: col, Reason: "required column missing"}
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (model.OrderRecord, string) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(get(colOrderDate))
	if err != nil {
		return model.OrderRecord{}, "unparseable order date"
	}
	qty, err := strconv.Atoi(get(colQuantity))
	if err != nil {
		return model.OrderRecord{}, "unparseable quantity"
	}
	price, err := parseNumber(get(colUnitPrice))
	if err != nil {
		return model.OrderRecord{}, "unparseable unit price"
	}
	discount, err := parseNumber(get(colDiscount))
	if err != nil {
		return model.OrderRecord{}, "unparseable discount"
	}
	sales, err := parseNumber(get(colSales))
	if err != nil {
		return model.OrderRecord{}, "unparseable sales"
	}
	profit, err := parseNumber(get(colProfit))
	if err != nil {
		return model.OrderRecord{}, "unparseable profit"
	}
	id := get(colOrderID)
	if id == "" {
		return model.OrderRecord{}, "empty order id"
	}

	return model.OrderRecord{
		OrderID:      id,
		OrderDate:    date,
		CustomerName: NormalizeText(get(colCustomer)),
		ProductName:  NormalizeText(get(colProduct)),
		Category:     NormalizeCategory(get(colCategory)),
		SubCategory:  NormalizeCategory(get(colSubCategory)),
		Region:       NormalizeCategory(get(colRegion)),
		City:         NormalizeCategory(get(colCity)),
		PaymentMode:  NormalizeCategory(get(colPayment)),
		Quantity:     qty,
		UnitPrice:    price,
		DiscountPct:  discount,
		Sales:        sales,
		Profit:       profit,
	}, ""
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", s)
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// NormalizeCategory folds a categorical value into its canonical form: trimmed,
// single-spaced, diacritics stripped, title-cased. "  wEST " and "West" land on
// the same domain value so typos surface as a single group, not two.
func NormalizeCategory(s string) string {
	return titleCaser.String(NormalizeText(strings.ToLower(s)))
}

// NormalizeText trims, collapses inner whitespace and strips diacritics while
// preserving the original casing. Used for customer and product names.
func NormalizeText(s string) string {
	s = stripDiacritics(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// stripDiacritics removes combining marks after NFD decomposition.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func canonicalKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "-", " ")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// BOM prefixes recognized by decode.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode strips any BOM and returns UTF-8 bytes. Inputs that are neither
// valid UTF-8 nor BOM-marked are treated as Latin-1.
func decode(data []byte) ([]byte, string) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[3:], "utf-8-bom"
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data[2:], false), "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data[2:], true), "utf-16be"
	case utf8.Valid(data):
		return data, "utf-8"
	}
	return decodeLatin1(data), "latin-1"
}

func decodeLatin1(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	for _, b := range data {
		buf.WriteRune(rune(b))
	}
	return buf.Bytes()
}

func decodeUTF16(data []byte, bigEndian bool) []byte {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for i := 0; i < len(data); i += 2 {
		var u uint16
		if bigEndian {
			u = uint16(data[i])<<8 | uint16(data[i+1])
		} else {
			u = uint16(data[i+1])<<8 | uint16(data[i])
		}
		if u >= 0xD800 && u <= 0xDBFF && i+3 < len(data) {
			var low uint16
			if bigEndian {
				low = uint16(data[i+2])<<8 | uint16(data[i+3])
			} else {
				low = uint16(data[i+3])<<8 | uint16(data[i+2])
			}
			if low >= 0xDC00 && low <= 0xDFFF {
				buf.WriteRune(0x10000 + (rune(u-0xD800)<<10 | rune(low-0xDC00)))
				i += 2
				continue
			}
		}
		if u >= 0xD800 && u <= 0xDFFF {
			buf.WriteRune(0xFFFD)
			continue
		}
		buf.WriteRune(rune(u))
	}
	return buf.Bytes()
}
