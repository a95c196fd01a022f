package persistence

import "time"

// Event is a calendar entry assigned to one or more displays. Occurrences of
// a weekly series share a GroupID; single events carry an empty one. All-day
// events span 00:00:00 to 23:59:59 of their days.
type Event struct {
	ID            int64
	Title         string
	GroupID       string
	Rule          string
	Start         time.Time
	End           time.Time
	AllDay        bool
	DisplayImages []DisplayImage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayImage pairs a target display with the image it shows during an
// event. Order is preserved as submitted.
type DisplayImage struct {
	DisplayMAC string
	Image      string
}

// DisplayMACs returns the MAC of every pairing in order.
func (e Event) DisplayMACs() []string {
	macs := make([]string, 0, len(e.DisplayImages))
	for _, pair := range e.DisplayImages {
		macs = append(macs, pair.DisplayMAC)
	}
	return macs
}

// Display is a registered e-ink panel, identified by its MAC address.
type Display struct {
	MAC       string
	Name      string
	Width     int
	Height    int
	LastSeen  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image is a rendered template stored for a display, addressed by the
// generated file name.
type Image struct {
	Name        string
	DisplayMAC  string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// WeekdayTime is the wake window of one weekday. Start and End are HH:mm.
type WeekdayTime struct {
	Enabled bool
	Start   string
	End     string
}

// WakeConfig holds the platform-wide wake and retention settings.
type WakeConfig struct {
	WakeIntervalMinutes int
	LeadMinutes         int
	FollowUpMinutes     int
	DeleteAfterDays     int
	WeekdayTimes        map[time.Weekday]WeekdayTime
	UpdatedAt           time.Time
}

// User is an operator account of the admin console.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a persisted login session.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
