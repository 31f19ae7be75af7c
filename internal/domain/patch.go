package domain

// Field is one optional entry of a Patch.
type Field[T any] struct {
	Value T
	Set   bool
}

func Set[T any](v T) Field[T] { return Field[T]{Value: v, Set: true} }

// Patch names the mutable review fields a change touches. Unset fields are left alone.
type Patch struct {
	Status       Field[Status]
	Analysis     Field[*Analysis]
	Response     Field[string]
	ErrorMessage Field[string]
}

const (
	FieldStatus       = "status"
	FieldAnalysis     = "analysis"
	FieldResponse     = "response"
	FieldErrorMessage = "errorMessage"
)

// Fields lists the set field names in a stable order.
func (p Patch) Fields() []string {
	var out []string
	if p.Status.Set {
		out = append(out, FieldStatus)
	}
	if p.Analysis.Set {
		out = append(out, FieldAnalysis)
	}
	if p.Response.Set {
		out = append(out, FieldResponse)
	}
	if p.ErrorMessage.Set {
		out = append(out, FieldErrorMessage)
	}
	return out
}

func (p Patch) Empty() bool { return len(p.Fields()) == 0 }

// Apply shallow-merges p into r; every set field fully replaces the prior value.
func (p Patch) Apply(r *Review) {
	if p.Status.Set {
		r.Status = p.Status.Value
	}
	if p.Analysis.Set {
		if p.Analysis.Value == nil {
			r.Analysis = nil
		} else {
			a := *p.Analysis.Value
			r.Analysis = &a
		}
	}
	if p.Response.Set {
		r.Response = p.Response.Value
	}
	if p.ErrorMessage.Set {
		r.ErrorMessage = p.ErrorMessage.Value
	}
}

// Capture returns a patch over the same fields as p holding r's current values.
// Applying it undoes p.
func (p Patch) Capture(r Review) Patch {
	var out Patch
	if p.Status.Set {
		out.Status = Set(r.Status)
	}
	if p.Analysis.Set {
		var a *Analysis
		if r.Analysis != nil {
			c := *r.Analysis
			a = &c
		}
		out.Analysis = Set(a)
	}
	if p.Response.Set {
		out.Response = Set(r.Response)
	}
	if p.ErrorMessage.Set {
		out.ErrorMessage = Set(r.ErrorMessage)
	}
	return out
}

// Merge overlays q on p; fields set in q win.
func (p Patch) Merge(q Patch) Patch {
	if q.Status.Set {
		p.Status = q.Status
	}
	if q.Analysis.Set {
		p.Analysis = q.Analysis
	}
	if q.Response.Set {
		p.Response = q.Response
	}
	if q.ErrorMessage.Set {
		p.ErrorMessage = q.ErrorMessage
	}
	return p
}
