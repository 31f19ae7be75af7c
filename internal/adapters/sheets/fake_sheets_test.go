package sheets_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// ---- fakes ----

// fakeSheets serves the subset of the values API the repo uses.
type fakeSheets struct {
	mu       sync.Mutex
	grid     map[string][][]any
	failures []int // statuses returned before serving normally
	calls    int
	auth     []string

	appends     int
	lostAppends int // appends committed but answered with 503
}

func newFakeSheets(t *testing.T) (*fakeSheets, *httptest.Server) {
	t.Helper()
	f := &fakeSheets{grid: map[string][][]any{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.auth = append(f.auth, r.Header.Get("Authorization")+"|"+r.URL.Query().Get("key"))
	if len(f.failures) > 0 {
		code := f.failures[0]
		f.failures = f.failures[1:]
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"The caller does not have permission"}}`, code)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/SHEET1/")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(rest, "values/"):
		sheet := sheetName(strings.TrimPrefix(rest, "values/"))
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rest, "values": f.grid[sheet]})

	case r.Method == http.MethodPost && rest == "values:batchUpdate":
		var req struct {
			Data []struct {
				Range  string  `json:"range"`
				Values [][]any `json:"values"`
			} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, d := range req.Data {
			sheet := sheetName(d.Range)
			col, row := parseCell(d.Range[strings.Index(d.Range, "!")+1:])
			f.set(sheet, row, col, d.Values[0][0])
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(rest, ":append"):
		sheet := sheetName(strings.TrimPrefix(rest, "values/"))
		var req struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		start := len(f.grid[sheet]) + 1
		f.grid[sheet] = append(f.grid[sheet], req.Values...)
		end := len(f.grid[sheet])
		f.appends++
		if f.lostAppends > 0 {
			f.lostAppends--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": fmt.Sprintf("%s!A%d:M%d", sheet, start, end)},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSheets) set(sheet string, row, col int, v any) {
	g := f.grid[sheet]
	for len(g) < row {
		g = append(g, []any{})
	}
	for len(g[row-1]) <= col {
		g[row-1] = append(g[row-1], "")
	}
	g[row-1][col] = v
	f.grid[sheet] = g
}

func (f *fakeSheets) cell(sheet string, row, col int) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.grid[sheet]
	if row-1 >= len(g) || col >= len(g[row-1]) {
		return nil
	}
	return g[row-1][col]
}

func sheetName(rng string) string {
	if i := strings.Index(rng, "!"); i >= 0 {
		return rng[:i]
	}
	return rng
}

// parseCell reads single-letter A1 cells such as "H5".
func parseCell(a1 string) (col, row int) {
	col = int(a1[0] - 'A')
	row, _ = strconv.Atoi(a1[1:])
	return col, row
}
