package domain

import (
	"strconv"
	"strings"
)

// All is the filter value that matches every review in its dimension.
const All = "All"

// Filter narrows the dashboard view. Zero values mean All.
type Filter struct {
	Business  string       `json:"business,omitempty"`
	Source    ReviewSource `json:"source,omitempty"`
	Rating    int          `json:"rating,omitempty"`
	Sentiment Sentiment    `json:"sentiment,omitempty"`
}

// ParseFilter reads the four dimensions from raw strings, treating "" and "All" alike.
func ParseFilter(business, source, rating, sentiment string) (Filter, error) {
	var f Filter
	if !isAll(business) {
		f.Business = business
	}
	if !isAll(source) {
		f.Source = ReviewSource(source)
	}
	if !isAll(rating) {
		n, err := strconv.Atoi(rating)
		if err != nil || n < 1 || n > 5 {
			return Filter{}, ErrInvalidInput
		}
		f.Rating = n
	}
	if !isAll(sentiment) {
		f.Sentiment = Sentiment(sentiment)
	}
	return f, nil
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Match reports whether r passes every dimension of f.
func (f Filter) Match(r Review) bool {
	if f.Business != "" && r.BusinessName != f.Business {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.Rating != 0 && r.Rating != f.Rating {
		return false
	}
	if f.Sentiment != "" && (r.Analysis == nil || r.Analysis.Sentiment != f.Sentiment) {
		return false
	}
	return true
}
