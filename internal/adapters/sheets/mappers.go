package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"reviewdesk/internal/domain"
)

/********** header alias registries **********/

const (
	colID        = "id"
	colBusiness  = "business"
	colName      = "name"
	colAuthor    = "author"
	colRating    = "rating"
	colText      = "text"
	colDate      = "date"
	colSource    = "source"
	colStatus    = "status"
	colSentiment = "sentiment"
	colIntent    = "intent"
	colResponse  = "response"
	colError     = "errorMessage"
	colUpdated   = "updatedAt"
	colCreated   = "createdAt"
)

// reviewColumns is the default Reviews!A:M layout, in column order.
var reviewColumns = []string{
	colID, colBusiness, colAuthor, colRating, colText, colDate, colSource,
	colStatus, colSentiment, colIntent, colResponse, colError, colUpdated,
}

var businessColumns = []string{colID, colName, colCreated}

var reviewAliases = map[string][]string{
	colID:        {"id", "review id"},
	colBusiness:  {"business", "business name"},
	colAuthor:    {"author", "reviewer", "customer", "customer name"},
	colRating:    {"rating", "stars", "score"},
	colText:      {"text", "review", "review text", "comment"},
	colDate:      {"date", "review date"},
	colSource:    {"source", "platform", "channel"},
	colStatus:    {"status"},
	colSentiment: {"sentiment"},
	colIntent:    {"intent", "topic"},
	colResponse:  {"response", "reply", "ai response"},
	colError:     {"error", "error message"},
	colUpdated:   {"updated", "updated at", "last updated"},
}

var businessAliases = map[string][]string{
	colID:      {"id", "business id"},
	colName:    {"name", "business", "business name"},
	colCreated: {"created", "created at", "added"},
}

/********** layout **********/

// layout maps a field to its zero-based column.
type layout map[string]int

func defaultLayout(cols []string) layout {
	l := make(layout, len(cols))
	for i, c := range cols {
		l[c] = i
	}
	return l
}

func normHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveLayout reads a header row through the alias registry. Columns the
// header does not name keep their default position unless it is taken.
func resolveLayout(header []string, aliases map[string][]string, defaults []string) layout {
	l := layout{}
	taken := map[int]bool{}
	for i, h := range header {
		n := normHeader(h)
		for field, names := range aliases {
			if _, done := l[field]; done {
				continue
			}
			for _, a := range names {
				if n == a {
					l[field] = i
					taken[i] = true
				}
			}
		}
	}
	if len(l) == 0 {
		return defaultLayout(defaults)
	}
	for i, field := range defaults {
		if _, ok := l[field]; !ok && !taken[i] && i >= len(header) {
			l[field] = i
		}
	}
	return l
}

func (l layout) width() int {
	w := 0
	for _, i := range l {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (l layout) cell(row []string, field string) string {
	i, ok := l[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// a1 returns the single-cell range of field on row.
func (l layout) a1(sheet, field string, row int) (string, bool) {
	i, ok := l[field]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s!%s%d", sheet, colLetter(i), row), true
}

func colLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}

/********** rows <-> domain **********/

func reviewFromRow(row []string, l layout, rowIndex int) (domain.Review, bool) {
	text, author := l.cell(row, colText), l.cell(row, colAuthor)
	if text == "" && author == "" {
		return domain.Review{}, false
	}
	idx := rowIndex
	r := domain.Review{
		ID:           parseID(l.cell(row, colID), int64(rowIndex-1)),
		Author:       author,
		Rating:       parseRating(l.cell(row, colRating)),
		Text:         text,
		Date:         l.cell(row, colDate),
		Source:       domain.ReviewSource(l.cell(row, colSource)),
		Status:       domain.Status(l.cell(row, colStatus)),
		BusinessName: l.cell(row, colBusiness),
		Response:     l.cell(row, colResponse),
		ErrorMessage: l.cell(row, colError),
		RowIndex:     &idx,
	}
	if !r.Status.Valid() {
		r.Status = domain.StatusPendingAnalysis
	}
	if s, in := l.cell(row, colSentiment), l.cell(row, colIntent); s != "" || in != "" {
		r.Analysis = &domain.Analysis{Sentiment: domain.ParseSentiment(s), Intent: in}
	}
	return r, true
}

func businessFromRow(row []string, l layout, rowIndex int) (domain.Business, bool) {
	name := l.cell(row, colName)
	if name == "" {
		return domain.Business{}, false
	}
	idx := rowIndex
	return domain.Business{ID: parseID(l.cell(row, colID), int64(rowIndex-1)), Name: name, RowIndex: &idx}, true
}

func reviewToRow(r domain.Review, l layout, stamp string) []any {
	row := make([]any, l.width())
	for i := range row {
		row[i] = ""
	}
	set := func(field string, v any) {
		if i, ok := l[field]; ok {
			row[i] = v
		}
	}
	set(colID, r.ID)
	set(colBusiness, r.BusinessName)
	set(colAuthor, r.Author)
	set(colRating, r.Rating)
	set(colText, r.Text)
	set(colDate, r.Date)
	set(colSource, string(r.Source))
	set(colStatus, string(r.Status))
	if r.Analysis != nil {
		set(colSentiment, string(r.Analysis.Sentiment))
		set(colIntent, r.Analysis.Intent)
	}
	set(colResponse, r.Response)
	set(colError, r.ErrorMessage)
	set(colUpdated, stamp)
	return row
}

func businessToRow(b domain.Business, l layout, stamp string) []any {
	row := make([]any, l.width())
	for i := range row {
		row[i] = ""
	}
	if i, ok := l[colID]; ok {
		row[i] = b.ID
	}
	if i, ok := l[colName]; ok {
		row[i] = b.Name
	}
	if i, ok := l[colCreated]; ok {
		row[i] = stamp
	}
	return row
}

// patchRanges turns the set fields of p into single-cell writes on row.
func patchRanges(p domain.Patch, l layout, row int, stamp string) []valueRange {
	var out []valueRange
	put := func(field string, v any) {
		if rng, ok := l.a1(reviewsSheet, field, row); ok {
			out = append(out, valueRange{Range: rng, Values: [][]any{{v}}})
		}
	}
	if p.Status.Set {
		put(colStatus, string(p.Status.Value))
	}
	if p.Analysis.Set {
		var s, in string
		if a := p.Analysis.Value; a != nil {
			s, in = string(a.Sentiment), a.Intent
		}
		put(colSentiment, s)
		put(colIntent, in)
	}
	if p.Response.Set {
		put(colResponse, p.Response.Value)
	}
	if p.ErrorMessage.Set {
		put(colError, p.ErrorMessage.Value)
	}
	if len(out) > 0 {
		put(colUpdated, stamp)
	}
	return out
}

/********** tiny helpers **********/

func parseID(s string, def int64) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return n
	}
	return def
}

func parseRating(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	n := int(f + 0.5)
	if n < 1 || n > 5 {
		return 0
	}
	return n
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// firstRow extracts the starting row of an A1 range such as "Reviews!A6:M8".
func firstRow(a1 string) (int, error) {
	s := a1
	if i := strings.LastIndex(s, "!"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("unexpected range %q", a1)
	}
	return n, nil
}
