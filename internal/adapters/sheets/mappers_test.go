package sheets

import (
	"testing"

	"reviewdesk/internal/domain"
)

func TestResolveLayout_AliasesAndOrder(t *testing.T) {
	l := resolveLayout([]string{"Review Text", "Customer Name", "stars", "STATUS", "Reply"}, reviewAliases, reviewColumns)
	want := map[string]int{colText: 0, colAuthor: 1, colRating: 2, colStatus: 3, colResponse: 4}
	for f, i := range want {
		if l[f] != i {
			t.Fatalf("%s at %d, want %d", f, l[f], i)
		}
	}
	if _, ok := l[colSentiment]; !ok {
		t.Fatalf("unnamed columns should keep a default slot past the header")
	}

	if d := resolveLayout([]string{"foo", "bar"}, reviewAliases, reviewColumns); d[colUpdated] != 12 {
		t.Fatalf("unknown header should fall back to the default layout")
	}
}

func TestPatchRanges(t *testing.T) {
	l := defaultLayout(reviewColumns)
	got := patchRanges(domain.Patch{Response: domain.Set(""), ErrorMessage: domain.Set("x")}, l, 7, "now")
	want := []string{"Reviews!K7", "Reviews!L7", "Reviews!M7"}
	if len(got) != len(want) {
		t.Fatalf("ranges %+v", got)
	}
	for i, w := range want {
		if got[i].Range != w {
			t.Fatalf("range %d = %s, want %s", i, got[i].Range, w)
		}
	}
	if len(patchRanges(domain.Patch{}, l, 7, "now")) != 0 {
		t.Fatalf("empty patch must write nothing")
	}
}

func TestHelpers(t *testing.T) {
	if colLetter(0) != "A" || colLetter(12) != "M" || colLetter(26) != "AA" {
		t.Fatalf("colLetter")
	}
	if n, err := firstRow("'Reviews'!A6:M8"); err != nil || n != 6 {
		t.Fatalf("firstRow: %d %v", n, err)
	}
	if _, err := firstRow("garbage"); err == nil {
		t.Fatalf("expected error")
	}
	for in, want := range map[string]int{"5": 5, "4.6": 5, "0": 0, "9": 0, "x": 0} {
		if got := parseRating(in); got != want {
			t.Fatalf("parseRating(%q) = %d", in, got)
		}
	}
}
