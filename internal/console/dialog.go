package console

// DialogState names the phases of the entry dialog.
type DialogState int

const (
	// DialogClosed means no dialog is visible.
	DialogClosed DialogState = iota
	// DialogEditing means the draft is open for changes.
	DialogEditing
	// DialogSubmitting means a save request is in flight.
	DialogSubmitting
	// DialogCollision shows the collision text while keeping the draft, so
	// the operator can adjust and resubmit.
	DialogCollision
	// DialogWakeupNotice shows the wakeup timing notice. The event is saved.
	DialogWakeupNotice
)

// Dialog is the entry dialog state machine. Values are immutable; each
// transition returns the next state.
type Dialog struct {
	State  DialogState
	Draft  EventDraft
	Notice string
}

// ClosedDialog is the initial state.
func ClosedDialog() Dialog {
	return Dialog{State: DialogClosed}
}

// OpenNew opens the dialog with a fresh draft for the selected date.
func OpenNew(date string) Dialog {
	return Dialog{State: DialogEditing, Draft: NewEventDraft(date)}
}

// OpenEdit opens the dialog with an existing event's draft.
func OpenEdit(draft EventDraft) Dialog {
	return Dialog{State: DialogEditing, Draft: draft}
}

// WithDraft replaces the draft while editing.
func (d Dialog) WithDraft(draft EventDraft) Dialog {
	d.Draft = draft
	return d
}

// Submitting marks the save request as in flight.
func (d Dialog) Submitting() Dialog {
	d.State = DialogSubmitting
	d.Notice = ""
	return d
}

// Resolve applies a submission outcome. The second result reports whether
// the server data changed and listings must be reloaded: plain success and
// wakeup warnings count, collisions and rejections do not.
func (d Dialog) Resolve(outcome Outcome) (Dialog, bool) {
	switch outcome.Kind {
	case KindSuccess:
		return ClosedDialog(), true
	case KindWakeupWarning:
		d.State = DialogWakeupNotice
		d.Notice = outcome.Message
		return d, true
	case KindCollision:
		d.State = DialogCollision
		d.Notice = outcome.Message
		return d, false
	default:
		d.State = DialogEditing
		d.Notice = outcome.Message
		return d, false
	}
}

// Acknowledge dismisses a notice. A collision returns to editing with the
// draft intact; a wakeup notice closes the dialog because the event is
// already saved.
func (d Dialog) Acknowledge() Dialog {
	switch d.State {
	case DialogCollision:
		d.State = DialogEditing
		d.Notice = ""
		return d
	case DialogWakeupNotice:
		return ClosedDialog()
	default:
		return d
	}
}

// Cancel closes the dialog and drops the draft.
func (d Dialog) Cancel() Dialog {
	return ClosedDialog()
}
