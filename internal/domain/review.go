package domain

import "strings"

type ReviewSource string

const (
	SourceGoogle     ReviewSource = "Google"
	SourceFacebook   ReviewSource = "Facebook"
	SourceYelp       ReviewSource = "Yelp"
	SourceAppStore   ReviewSource = "App Store"
	SourceTrustpilot ReviewSource = "Trustpilot"
)

// Sources lists every channel in display order.
var Sources = []ReviewSource{SourceGoogle, SourceFacebook, SourceYelp, SourceAppStore, SourceTrustpilot}

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentUnknown  Sentiment = "Unknown"
)

// ParseSentiment maps free-form model output onto the fixed set.
// Anything unrecognised becomes SentimentUnknown.
func ParseSentiment(s string) Sentiment {
	for _, v := range []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUnknown} {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v
		}
	}
	return SentimentUnknown
}

type Analysis struct {
	Sentiment Sentiment `json:"sentiment"`
	Intent    string    `json:"intent"`
}

type Review struct {
	ID           int64        `json:"id"`
	Author       string       `json:"author"`
	Rating       int          `json:"rating"` // 1..5
	Text         string       `json:"text"`
	Date         string       `json:"date"` // YYYY-MM-DD
	Source       ReviewSource `json:"source"`
	Status       Status       `json:"status"`
	BusinessName string       `json:"businessName,omitempty"`
	Analysis     *Analysis    `json:"analysis,omitempty"`
	Response     string       `json:"response,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	RowIndex     *int         `json:"rowIndex,omitempty"` // positional handle in the backing store
}

// Clone returns a copy that shares no pointers with r.
func (r Review) Clone() Review {
	out := r
	if r.Analysis != nil {
		a := *r.Analysis
		out.Analysis = &a
	}
	if r.RowIndex != nil {
		i := *r.RowIndex
		out.RowIndex = &i
	}
	return out
}

// Selectable reports whether a batch action can currently run on r.
func (r Review) Selectable() bool {
	return r.Status == StatusPendingAnalysis || r.Status == StatusPendingResponse
}

type Business struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	RowIndex *int   `json:"rowIndex,omitempty"`
}

// Snapshot is a full read of the backing store.
type Snapshot struct {
	Reviews    []Review   `json:"reviews"`
	Businesses []Business `json:"businesses"`
}
