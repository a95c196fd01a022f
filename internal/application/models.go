package application

import "time"

// Principal represents the authenticated operator invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// EventInput captures caller provided event fields. Start and End are local
// times; for all-day events they are normalized to the day bounds before
// persisting.
type EventInput struct {
	Title         string
	Start         time.Time
	End           time.Time
	AllDay        bool
	DisplayImages []DisplayImage
}

// DisplayImage pairs a target display with the image it shows during an
// event. Submission order is preserved.
type DisplayImage struct {
	DisplayMAC string
	Image      string
}

// Event is the application view of a persisted event.
type Event struct {
	ID            int64
	Title         string
	GroupID       string
	Start         time.Time
	End           time.Time
	AllDay        bool
	DisplayImages []DisplayImage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecurringEventInput captures a recurring series: the first occurrence plus
// the recurrence rule the console built.
type RecurringEventInput struct {
	Title         string
	Start         time.Time
	End           time.Time
	AllDay        bool
	DisplayImages []DisplayImage
	Rule          string
}

// RecurringEvent summarizes a stored series for listings.
type RecurringEvent struct {
	GroupID       string
	Title         string
	Rule          string
	First         time.Time
	Occurrences   int
	DisplayImages []DisplayImage
}

// DisplayInput captures caller provided display registry fields.
type DisplayInput struct {
	MAC    string
	Name   string
	Width  int
	Height int
}

// Display is the application view of a registered display.
type Display struct {
	MAC       string
	Name      string
	Width     int
	Height    int
	LastSeen  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeekdayWindow is one weekday's wake window in HH:mm strings.
type WeekdayWindow struct {
	Enabled bool
	Start   string
	End     string
}

// WakeSettings is the platform wake and retention configuration exposed to
// the console.
type WakeSettings struct {
	WakeIntervalMinutes int
	LeadMinutes         int
	FollowUpMinutes     int
	DeleteAfterDays     int
	WeekdayTimes        map[time.Weekday]WeekdayWindow
}

// ImageInput captures an uploaded rendered image.
type ImageInput struct {
	DisplayMAC  string
	ContentType string
	Data        []byte
}

// Image is the application view of a stored image.
type Image struct {
	Name        string
	DisplayMAC  string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// User is an operator account without its credential material.
type User struct {
	ID        string
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is an issued login session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateEventParams wraps the data required to create a single event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   int64
	Input     EventInput
}

// DeleteEventParams wraps the data required to delete an event.
type DeleteEventParams struct {
	Principal Principal
	EventID   int64
}

// CreateRecurringEventParams wraps the data required to create a series.
type CreateRecurringEventParams struct {
	Principal Principal
	Input     RecurringEventInput
}

// DeleteRecurringEventParams wraps the data required to delete a series.
type DeleteRecurringEventParams struct {
	Principal Principal
	GroupID   string
}

// CreateDisplayParams wraps the data required to register a display.
type CreateDisplayParams struct {
	Principal Principal
	Input     DisplayInput
}

// UpdateDisplayParams wraps the data required to update a display.
type UpdateDisplayParams struct {
	Principal Principal
	Input     DisplayInput
}

// DeleteDisplayParams wraps the data required to remove a display.
type DeleteDisplayParams struct {
	Principal Principal
	MAC       string
}

// SaveWakeSettingsParams wraps the data required to update the wake settings.
type SaveWakeSettingsParams struct {
	Principal Principal
	Settings  WakeSettings
}

// SaveImageParams wraps an image upload.
type SaveImageParams struct {
	Principal Principal
	Input     ImageInput
}

// DeleteImageParams wraps the data required to remove an image.
type DeleteImageParams struct {
	Principal Principal
	Name      string
}

// AuthenticateParams carries login credentials.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult carries the authenticated user and the issued session.
type AuthenticateResult struct {
	User    User
	Session Session
}

// CreateUserParams wraps the data required to create an operator account.
type CreateUserParams struct {
	Principal Principal
	Username  string
	Password  string
	IsAdmin   bool
}

// DeleteUserParams wraps the data required to remove an operator account.
type DeleteUserParams struct {
	Principal Principal
	UserID    string
}
