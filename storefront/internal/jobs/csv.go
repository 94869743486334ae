package jobs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const (
	PlatformCollectr  = "collectr"
	PlatformTCGPlayer = "tcgplayer"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyFile     = errors.New("file has no header row")
)

// Graders accepted in a collection export.
var graders = map[string]bool{"ungraded": true, "psa": true, "bgs": true, "cgc": true, "sgc": true}

type collectionField int

const (
	fieldName collectionField = iota
	fieldSet
	fieldNumber
	fieldGrader
	fieldGrade
	fieldQuantity
	fieldCost
)

// collectionAliases maps normalized header names to fields, per platform.
var collectionAliases = map[string]map[string]collectionField{
	PlatformCollectr: {
		"productname":     fieldName,
		"cardname":        fieldName,
		"name":            fieldName,
		"setcode":         fieldSet,
		"set":             fieldSet,
		"cardnumber":      fieldNumber,
		"number":          fieldNumber,
		"no.":             fieldNumber,
		"gradingcompany":  fieldGrader,
		"grader":          fieldGrader,
		"grade":           fieldGrade,
		"cardgrade":       fieldGrade,
		"quantity":        fieldQuantity,
		"qty":             fieldQuantity,
		"averagecostpaid": fieldCost,
		"pricepaid":       fieldCost,
		"cost":            fieldCost,
	},
	PlatformTCGPlayer: {
		"productname":    fieldName,
		"name":           fieldName,
		"setcode":        fieldSet,
		"set":            fieldSet,
		"number":         fieldNumber,
		"cardnumber":     fieldNumber,
		"gradingcompany": fieldGrader,
		"grade":          fieldGrade,
		"totalquantity":  fieldQuantity,
		"quantity":       fieldQuantity,
		"purchaseprice":  fieldCost,
		"cost":           fieldCost,
	},
}

// CollectionRow is one parsed line of a collection export.
type CollectionRow struct {
	Line           int
	Name           string
	SetCode        string
	CardNumber     string
	GradingService string
	Grade          string
	Quantity       int
	CostCents      *int64
}

// ParseCollectionCSV reads a collection export. Malformed rows are counted and
// skipped; a missing header or required column fails the whole file.
func ParseCollectionCSV(r io.Reader, platform, defaultGrader string) ([]CollectionRow, int, error) {
	aliases, ok := collectionAliases[platform]
	if !ok {
		return nil, 0, fmt.Errorf("unknown platform %q", platform)
	}
	if defaultGrader == "" {
		defaultGrader = "ungraded"
	}

	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrEmptyFile
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[collectionField]int)
	for i, h := range header {
		if f, ok := aliases[normalizeHeader(h)]; ok {
			if _, dup := cols[f]; !dup {
				cols[f] = i
			}
		}
	}
	for _, f := range []collectionField{fieldSet, fieldNumber} {
		if _, ok := cols[f]; !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, fieldLabel(f))
		}
	}

	var (
		rows      []CollectionRow
		malformed int
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return nil, 0, fmt.Errorf("read line %d: %w", line, err)
		}
		row, ok := parseCollectionRecord(rec, cols, defaultGrader)
		if !ok {
			malformed++
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, malformed, nil
}

func parseCollectionRecord(rec []string, cols map[collectionField]int, defaultGrader string) (CollectionRow, bool) {
	get := func(f collectionField) string {
		i, ok := cols[f]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := CollectionRow{
		Name:       get(fieldName),
		SetCode:    get(fieldSet),
		CardNumber: get(fieldNumber),
		Quantity:   1,
	}
	if row.SetCode == "" || row.CardNumber == "" {
		return row, false
	}

	grader, grade := splitGrade(get(fieldGrader), get(fieldGrade))
	if grader == "" {
		grader = defaultGrader
	}
	if !graders[grader] {
		return row, false
	}
	row.GradingService, row.Grade = grader, grade

	if q := get(fieldQuantity); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return row, false
		}
		row.Quantity = n
	}

	cost, err := ParseCents(get(fieldCost))
	if err != nil {
		return row, false
	}
	row.CostCents = cost
	return row, true
}

// splitGrade accepts the grader and grade as separate cells or as one grade
// cell such as "PSA 10".
func splitGrade(grader, grade string) (string, string) {
	grader = strings.ToLower(strings.TrimSpace(grader))
	grade = strings.TrimSpace(grade)
	if grader == "" {
		if name, rest, ok := strings.Cut(grade, " "); ok && graders[strings.ToLower(name)] {
			return strings.ToLower(name), strings.TrimSpace(rest)
		}
	}
	return grader, grade
}

// MarketPriceRow is one parsed line of a price guide. Items are identified by
// ItemID or by set code and card number.
type MarketPriceRow struct {
	Line       int
	ItemID     string
	SetCode    string
	CardNumber string
	Prices     map[string]int64
}

// marketPriceAliases maps normalized header names to market_prices columns.
var marketPriceAliases = map[string]string{
	"ungraded":   "ungraded",
	"raw":        "ungraded",
	"loose":      "ungraded",
	"looseprice": "ungraded",
	"psa9.5":     "psa9_5",
	"psa95":      "psa9_5",
	"bgs":        "bgs",
	"bgs10":      "bgs",
	"cgc":        "cgc",
	"cgc10":      "cgc",
}

func init() {
	for i := 1; i <= 10; i++ {
		n := strconv.Itoa(i)
		marketPriceAliases["psa"+n] = "psa" + n
		marketPriceAliases["grade"+n] = "psa" + n
	}
}

// ParseMarketPriceCSV reads a price guide. Rows with no usable price or an
// unreadable cell are counted as malformed and skipped.
func ParseMarketPriceCSV(r io.Reader) ([]MarketPriceRow, int, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrEmptyFile
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	idCol, setCol, numCol := -1, -1, -1
	priceCols := make(map[int]string)
	for i, h := range header {
		switch key := normalizeHeader(h); key {
		case "itemid", "id", "productid":
			idCol = i
		case "setcode", "set":
			setCol = i
		case "cardnumber", "number":
			numCol = i
		default:
			if col, ok := marketPriceAliases[key]; ok {
				priceCols[i] = col
			}
		}
	}
	if idCol < 0 && (setCol < 0 || numCol < 0) {
		return nil, 0, fmt.Errorf("%w: item_id or set_code and card_number", ErrMissingColumn)
	}
	if len(priceCols) == 0 {
		return nil, 0, fmt.Errorf("%w: no price columns", ErrMissingColumn)
	}

	var (
		rows      []MarketPriceRow
		malformed int
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return nil, 0, fmt.Errorf("read line %d: %w", line, err)
		}

		row := MarketPriceRow{
			Line:       line,
			ItemID:     cell(rec, idCol),
			SetCode:    cell(rec, setCol),
			CardNumber: cell(rec, numCol),
			Prices:     make(map[string]int64),
		}
		ok := row.ItemID != "" || (row.SetCode != "" && row.CardNumber != "")
		for i, col := range priceCols {
			cents, err := ParseCents(cell(rec, i))
			if err != nil {
				ok = false
				break
			}
			if cents != nil {
				row.Prices[col] = *cents
			}
		}
		if !ok || len(row.Prices) == 0 {
			malformed++
			continue
		}
		rows = append(rows, row)
	}
	return rows, malformed, nil
}

// ParseCents reads a money cell such as "$1,234.50" into cents. Blank cells
// yield nil; negative amounts are rejected.
func ParseCents(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	cents := d.Shift(2).Round(0).IntPart()
	return &cents, nil
}

// normalizeHeader folds case and drops spaces, underscores and hyphens so
// "Card Number", "card_number" and "CARD-NUMBER" compare equal.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = cases.Fold().String(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func fieldLabel(f collectionField) string {
	switch f {
	case fieldSet:
		return "set code"
	case fieldNumber:
		return "card number"
	default:
		return strconv.Itoa(int(f))
	}
}
