package permit

import "strings"

// Status is the closed-set classification of a workflow state.
type Status string

const (
	StatusNone           Status = ""
	StatusPendingClosure Status = "PENDING CLOSURE"
	StatusExpired        Status = "EXPIRED"
)

const stateClosed = "CLOSED"

// ClassifyStatus returns PENDING CLOSURE or EXPIRED when the workflow state is
// exactly that value (ignoring case and surrounding whitespace), and
// StatusNone otherwise. Workflow states are a small vocabulary, so unlike
// ClassifyArea this is an equality test, not a substring search.
func ClassifyStatus(v any) Status {
	switch canonState(v) {
	case string(StatusPendingClosure):
		return StatusPendingClosure
	case string(StatusExpired):
		return StatusExpired
	}
	return StatusNone
}

// IsClosed reports whether the workflow state is exactly CLOSED, ignoring case
// and surrounding whitespace.
func IsClosed(v any) bool {
	return canonState(v) == stateClosed
}

func canonState(v any) string {
	return strings.ToUpper(strings.TrimSpace(text(v)))
}
