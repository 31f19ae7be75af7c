package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reviewdesk/internal/domain"
)

func analysisPrompt(text string) string {
	return "Analyze the sentiment and primary intent of the following customer review. " +
		"Categorize sentiment as Positive, Negative, or Neutral. Describe the intent in a short phrase.\n" +
		"Respond with a JSON object with the keys \"sentiment\" and \"intent\".\n\n" +
		fmt.Sprintf("Review: %q", text)
}

func replyPrompt(r domain.Review, a domain.Analysis) string {
	var b strings.Builder
	b.WriteString("You are a professional customer support representative. ")
	b.WriteString("Write a polite, professional and personalized response to a customer review.\n\n")
	b.WriteString("Key Instructions:\n")
	fmt.Fprintf(&b, "- Start the response by addressing the customer by their name, for example \"Hi %s,\".\n", r.Author)
	fmt.Fprintf(&b, "- Keep an empathetic tone and acknowledge their main point: %q.\n", a.Intent)
	b.WriteString("- Match your tone to the review's sentiment. If they're happy, share their enthusiasm. If they're upset, be apologetic and helpful.\n")
	b.WriteString("- Do not use overly casual or generic terms like \"my friend\" or \"oh dear\".\n")
	b.WriteString("- Keep the response concise.\n")
	b.WriteString("- Do not add a closing sign-off like \"Sincerely\" or your name.\n\n")
	b.WriteString("Here is the review information:\n")
	fmt.Fprintf(&b, "- Customer Name: %s\n", r.Author)
	fmt.Fprintf(&b, "- Sentiment: %s\n", a.Sentiment)
	fmt.Fprintf(&b, "- Review: %q\n\n", r.Text)
	b.WriteString("Please write the response now.")
	return b.String()
}

var errEmptyOutput = errors.New("empty model output")

// parseAnalysis reads the model's JSON answer. Code fences are tolerated and an
// unexpected sentiment becomes Unknown.
func parseAnalysis(raw string) (domain.Analysis, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Analysis{}, errEmptyOutput
	}

	var out struct {
		Sentiment string `json:"sentiment"`
		Intent    string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return domain.Analysis{
		Sentiment: domain.ParseSentiment(out.Sentiment),
		Intent:    strings.TrimSpace(out.Intent),
	}, nil
}
