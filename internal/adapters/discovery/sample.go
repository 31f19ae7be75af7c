// Package discovery finds reviews for newly tracked businesses.
package discovery

import (
	"context"
	"time"

	"reviewdesk/internal/domain"
)

var sampleReviews = []struct {
	rating int
	text   string
	source domain.ReviewSource
}{
	{5, "Incredible service and amazing results! Highly recommend to everyone.", domain.SourceGoogle},
	{1, "A complete disaster. The product broke after one use and the company won't issue a refund. Avoid at all costs.", domain.SourceYelp},
	{3, "It's an okay product. Does the job but nothing spectacular. The price is a bit high for what you get.", domain.SourceFacebook},
}

var sampleAuthors = []string{"Chris Green", "Pat Kim", "Sam Jones"}

// Sample stands in for a scraper: every business gets the same three reviews, dated today.
type Sample struct {
	Now func() time.Time
}

func (s Sample) Discover(ctx context.Context, business string) ([]domain.Discovered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	date := now().UTC().Format(time.DateOnly)

	out := make([]domain.Discovered, 0, len(sampleReviews))
	for i, r := range sampleReviews {
		out = append(out, domain.Discovered{
			Author: sampleAuthors[i%len(sampleAuthors)],
			Rating: r.rating,
			Text:   r.text,
			Date:   date,
			Source: r.source,
		})
	}
	return out, nil
}
