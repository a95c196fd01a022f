package console

import (
	"github.com/example/tablohm/internal/booking"
	"github.com/example/tablohm/internal/datetime"
)

// BookingDialogMode names the states of the booking calendar's entry dialog.
type BookingDialogMode int

const (
	// BookingClosed means no booking dialog is open.
	BookingClosed BookingDialogMode = iota
	// BookingCreating edits a fresh draft for a clicked calendar date.
	BookingCreating
	// BookingEditing edits the draft of an existing entry.
	BookingEditing
)

// BookingDialog is the booking calendar's dialog state. It wraps a booking
// draft the same way the entry dialog wraps an event draft.
type BookingDialog struct {
	Mode  BookingDialogMode
	Draft booking.Draft
}

// ClosedBookingDialog is the initial state.
func ClosedBookingDialog() BookingDialog {
	return BookingDialog{Mode: BookingClosed}
}

// OpenBookingFor starts a new draft anchored on the clicked date. An
// unparsable date leaves the dialog closed.
func OpenBookingFor(date string) BookingDialog {
	normalized := datetime.NormalizeDateString(date)
	if normalized == "" {
		return ClosedBookingDialog()
	}
	return BookingDialog{Mode: BookingCreating, Draft: booking.NewDraft(normalized)}
}

// OpenBookingEdit starts an edit draft for an existing entry.
func OpenBookingEdit(entry booking.Entry) BookingDialog {
	return BookingDialog{Mode: BookingEditing, Draft: booking.DraftFromEntry(entry)}
}

// WithDraft replaces the draft while the dialog is open.
func (d BookingDialog) WithDraft(draft booking.Draft) BookingDialog {
	if d.Mode == BookingClosed {
		return d
	}
	d.Draft = draft
	return d
}

// Close dismisses the dialog and drops the draft.
func (d BookingDialog) Close() BookingDialog {
	return ClosedBookingDialog()
}
