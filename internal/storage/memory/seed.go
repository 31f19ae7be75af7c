package memory

import "reviewdesk/internal/domain"

func rowAt(i int) *int { return &i }

// Seed is the demo data set: two businesses and four reviews on rows 2..5.
func Seed() domain.Snapshot {
	return domain.Snapshot{
		Businesses: []domain.Business{
			{ID: 1, Name: "The Local Cafe", RowIndex: rowAt(2)},
			{ID: 2, Name: "Global Tech Inc.", RowIndex: rowAt(3)},
		},
		Reviews: []domain.Review{
			{
				ID:           1,
				Author:       "John Doe",
				Rating:       5,
				Text:         "Absolutely love this place! The coffee is the best in town and the staff are always so friendly. A real gem.",
				Date:         "2023-10-26",
				Source:       domain.SourceGoogle,
				Status:       domain.StatusPendingAnalysis,
				BusinessName: "The Local Cafe",
				RowIndex:     rowAt(2),
			},
			{
				ID:           2,
				Author:       "Jane Smith",
				Rating:       2,
				Text:         "The product I received was faulty and customer service has been unhelpful in resolving the issue. Very disappointed.",
				Date:         "2023-10-25",
				Source:       domain.SourceTrustpilot,
				Status:       domain.StatusPendingAnalysis,
				BusinessName: "Global Tech Inc.",
				RowIndex:     rowAt(3),
			},
			{
				ID:           3,
				Author:       "Alice Johnson",
				Rating:       4,
				Text:         "Great atmosphere and delicious pastries. The WiFi can be a bit slow sometimes, but overall a wonderful spot to work from.",
				Date:         "2023-10-24",
				Source:       domain.SourceYelp,
				Status:       domain.StatusApproved,
				BusinessName: "The Local Cafe",
				Analysis:     &domain.Analysis{Sentiment: domain.SentimentPositive, Intent: "Praise for atmosphere"},
				Response:     "Hi Alice, thank you for your feedback! We are so glad you enjoy our pastries and atmosphere. We are looking into improving our WiFi speed. Hope to see you again soon!",
				RowIndex:     rowAt(4),
			},
			{
				ID:           4,
				Author:       "Bob Brown",
				Rating:       1,
				Text:         "My order was an hour late and arrived cold. I've tried calling support multiple times with no answer. Unacceptable.",
				Date:         "2023-10-22",
				Source:       domain.SourceFacebook,
				Status:       domain.StatusPendingResponse,
				BusinessName: "The Local Cafe",
				Analysis:     &domain.Analysis{Sentiment: domain.SentimentNegative, Intent: "Complaint about delivery"},
				RowIndex:     rowAt(5),
			},
		},
	}
}
