package intake

import "github.com/dmitrijs2005/dogspotter/internal/server/models"

// OutcomeKind is the terminal state of one submission.
type OutcomeKind int

const (
	AcceptedWithDetection OutcomeKind = iota + 1
	AcceptedWithoutDetection
	RejectedDuplicate
	RejectedSuspended
	RejectedError
)

func (k OutcomeKind) String() string {
	switch k {
	case AcceptedWithDetection:
		return "accepted_with_detection"
	case AcceptedWithoutDetection:
		return "accepted_without_detection"
	case RejectedDuplicate:
		return "rejected_duplicate"
	case RejectedSuspended:
		return "rejected_suspended"
	case RejectedError:
		return "rejected_error"
	default:
		return "unknown"
	}
}

// Accepted reports whether the content was stored.
func (k OutcomeKind) Accepted() bool {
	return k == AcceptedWithDetection || k == AcceptedWithoutDetection
}

// Outcome is what the transport gets back. Only accepted outcomes carry a
// submission id and a stats snapshot.
type Outcome struct {
	Kind         OutcomeKind
	SubmissionID int64
	Stats        models.Stats
	// Suspended is set when this submission pushed its owner over the policy
	// threshold. The submission itself is still accepted.
	Suspended bool
}
