// Package console implements the client side of the operator console: the
// entry dialog draft, the submission client, and the classification of
// server responses into the outcomes the dialog state machine acts on.
package console

import "net/http"

// Kind classifies a submission result.
type Kind int

const (
	// KindSuccess means the event was saved and the dialog can close.
	KindSuccess Kind = iota
	// KindCollision means the event was rejected because it overlaps an
	// existing one on a shared display. The draft must be kept.
	KindCollision
	// KindWakeupWarning means the event was saved but the display wakes too
	// late to show it. The data changed and a notice is due.
	KindWakeupWarning
	// KindRejected covers every other failure, validation included.
	KindRejected
)

// Outcome is the classified result of one submission. Message carries the
// plain text body for collision, warning, and rejection outcomes.
type Outcome struct {
	Kind    Kind
	Message string
}

// Saved reports whether the server stored the event. Wakeup warnings count
// as saved.
func (o Outcome) Saved() bool {
	return o.Kind == KindSuccess || o.Kind == KindWakeupWarning
}

// Private status codes the server uses on the event endpoints.
const (
	statusCollision = 569
	statusWakeup    = 541
)

// Classify maps a response status and plain text body onto an outcome.
func Classify(status int, body string) Outcome {
	switch {
	case status == statusCollision:
		return Outcome{Kind: KindCollision, Message: body}
	case status == statusWakeup:
		return Outcome{Kind: KindWakeupWarning, Message: body}
	case status == http.StatusOK:
		return Outcome{Kind: KindSuccess}
	default:
		return Outcome{Kind: KindRejected, Message: body}
	}
}

// classifyDeletion maps a deletion response onto an outcome. The delete
// endpoints answer 204 and do not use the submission status contract.
func classifyDeletion(status int, body string) Outcome {
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return Outcome{Kind: KindSuccess}
	default:
		return Outcome{Kind: KindRejected, Message: body}
	}
}

// transportFailure is the outcome for requests that never reached the server.
func transportFailure(err error) Outcome {
	message := "Der Server ist nicht erreichbar."
	if err != nil {
		message += " (" + err.Error() + ")"
	}
	return Outcome{Kind: KindRejected, Message: message}
}
