package domain

type Status string

const (
	StatusPendingAnalysis Status = "PendingAnalysis"
	StatusAnalyzing       Status = "Analyzing"
	StatusPendingResponse Status = "PendingResponse"
	StatusGenerating      Status = "Generating"
	StatusPendingApproval Status = "PendingApproval"
	StatusApproved        Status = "Approved"
	StatusError           Status = "Error"
)

// Statuses is the closed set of review states.
var Statuses = []Status{
	StatusPendingAnalysis, StatusAnalyzing, StatusPendingResponse,
	StatusGenerating, StatusPendingApproval, StatusApproved, StatusError,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Trigger string

const (
	TriggerAnalyze  Trigger = "analyze"
	TriggerGenerate Trigger = "generate"
	TriggerApprove  Trigger = "approve"
	TriggerEdit     Trigger = "edit"
	TriggerDiscard  Trigger = "discard"
	TriggerRetry    Trigger = "retry"

	// internal completions of the two AI steps
	TriggerSucceed Trigger = "succeed"
	TriggerFail    Trigger = "fail"
)

type edge struct {
	from Status
	on   Trigger
}

// transitions is the whole review state machine. Edit keeps the state and is
// guarded separately on the presence of a response. Retry out of Error picks
// the edge by whether the review already carries an analysis.
var transitions = map[edge]Status{
	{StatusPendingAnalysis, TriggerAnalyze}:  StatusAnalyzing,
	{StatusAnalyzing, TriggerSucceed}:        StatusPendingResponse,
	{StatusAnalyzing, TriggerFail}:           StatusError,
	{StatusPendingResponse, TriggerGenerate}: StatusGenerating,
	{StatusGenerating, TriggerSucceed}:       StatusPendingApproval,
	{StatusGenerating, TriggerFail}:          StatusError,
	{StatusPendingApproval, TriggerApprove}:  StatusApproved,
	{StatusPendingApproval, TriggerDiscard}:  StatusPendingResponse,
	{StatusError, TriggerAnalyze}:            StatusAnalyzing,
	{StatusError, TriggerGenerate}:           StatusGenerating,
}

// Next returns the state reached from s on t, and false if t is not allowed in s.
func Next(s Status, t Trigger) (Status, bool) {
	n, ok := transitions[edge{s, t}]
	return n, ok
}

// Allowed reports whether trigger t may fire on r right now.
func Allowed(r Review, t Trigger) bool {
	switch t {
	case TriggerEdit:
		return r.Response != ""
	case TriggerRetry:
		return r.Status == StatusError
	case TriggerGenerate:
		if r.Analysis == nil {
			return false
		}
		// Error -> Generating is reachable only through Retry
		if r.Status != StatusPendingResponse {
			return false
		}
	case TriggerAnalyze:
		if r.Status != StatusPendingAnalysis {
			return false
		}
	}
	_, ok := Next(r.Status, t)
	return ok
}

// RetryStep is the step a failed review goes back to.
func RetryStep(r Review) Trigger {
	if r.Analysis == nil {
		return TriggerAnalyze
	}
	return TriggerGenerate
}
