package mysql

import (
	"reflect"
	"testing"

	"reviewdesk/internal/domain"
)

func TestUpdateClause(t *testing.T) {
	a := &domain.Analysis{Sentiment: domain.SentimentNegative, Intent: "Late"}
	sets, args := updateClause(domain.Patch{
		Status:       domain.Set(domain.StatusPendingResponse),
		Analysis:     domain.Set(a),
		ErrorMessage: domain.Set(""),
	})
	wantSets := []string{"status = ?", "sentiment = ?", "intent = ?", "error_message = ?"}
	if !reflect.DeepEqual(sets, wantSets) {
		t.Fatalf("sets %v", sets)
	}
	wantArgs := []any{"PendingResponse", "Negative", "Late", nil}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args %#v", args)
	}

	sets, args = updateClause(domain.Patch{Analysis: domain.Set[*domain.Analysis](nil)})
	if len(sets) != 2 || args[0] != nil || args[1] != nil {
		t.Fatalf("clearing analysis: %v %v", sets, args)
	}
	if sets, _ := updateClause(domain.Patch{}); len(sets) != 0 {
		t.Fatalf("empty patch: %v", sets)
	}
}

func TestNew_DescribeFromDSN(t *testing.T) {
	r := New(nil, "app:s3cretpassw0rd@tcp(db:3306)/reviewdesk?parseTime=true", nil)
	info := r.Describe()
	if info.ID != "db:3306/reviewdesk" || info.Credential != "s3cretpassw0rd" {
		t.Fatalf("info %+v", info)
	}
	if domain.Redact(info.Credential) != "s3cr...w0rd" {
		t.Fatalf("redact %q", domain.Redact(info.Credential))
	}
}
