package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/tablohm/internal/application"
)

type fakeEventService struct {
	event   application.Event
	warning *application.WakeupWarning
	err     error
	events  []application.Event

	lastCreate application.CreateEventParams
	lastUpdate application.UpdateEventParams
	lastDelete application.DeleteEventParams
	lastMAC    string
}

func (f *fakeEventService) Create(_ context.Context, params application.CreateEventParams) (application.Event, *application.WakeupWarning, error) {
	f.lastCreate = params
	return f.event, f.warning, f.err
}

func (f *fakeEventService) Update(_ context.Context, params application.UpdateEventParams) (application.Event, *application.WakeupWarning, error) {
	f.lastUpdate = params
	return f.event, f.warning, f.err
}

func (f *fakeEventService) Delete(_ context.Context, params application.DeleteEventParams) error {
	f.lastDelete = params
	return f.err
}

func (f *fakeEventService) List(context.Context) ([]application.Event, error) {
	return f.events, f.err
}

func (f *fakeEventService) ListForDisplay(_ context.Context, mac string) ([]application.Event, error) {
	f.lastMAC = mac
	return f.events, f.err
}

type fakeRecurringService struct {
	series  application.RecurringEvent
	warning *application.WakeupWarning
	err     error
	listed  []application.RecurringEvent

	lastCreate application.CreateRecurringEventParams
	lastDelete application.DeleteRecurringEventParams
}

func (f *fakeRecurringService) Create(_ context.Context, params application.CreateRecurringEventParams) (application.RecurringEvent, *application.WakeupWarning, error) {
	f.lastCreate = params
	return f.series, f.warning, f.err
}

func (f *fakeRecurringService) Delete(_ context.Context, params application.DeleteRecurringEventParams) error {
	f.lastDelete = params
	return f.err
}

func (f *fakeRecurringService) List(context.Context) ([]application.RecurringEvent, error) {
	return f.listed, f.err
}

type fakeAuthService struct {
	result application.AuthenticateResult
	err    error

	loggedOut string
}

func (f *fakeAuthService) Authenticate(_ context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	return f.result, f.err
}

func (f *fakeAuthService) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return f.err
}

type fakeValidator struct {
	principal application.Principal
	err       error
}

func (f fakeValidator) ValidateSession(context.Context, string) (application.Principal, error) {
	return f.principal, f.err
}

func testRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	if cfg.Sessions == nil {
		cfg.Sessions = RequireSession(fakeValidator{principal: application.Principal{UserID: "u-1", IsAdmin: true}}, nil)
	}
	return NewRouter(cfg)
}

func authedRequest(method, target string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer token-1")
	return req
}

func TestEventHandlers(t *testing.T) {
	t.Parallel()

	eventBody := `{"title":"Standup","start":"2025-03-03T09:00:00","end":"2025-03-03T09:30:00","displayImages":[{"displayMac":"aa:bb:cc:dd:ee:01","image":"frame-1.png"}]}`

	t.Run("create returns the stored event as JSON", func(t *testing.T) {
		t.Parallel()

		svc := &fakeEventService{event: application.Event{
			ID:    42,
			Title: "Standup",
			Start: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local),
			End:   time.Date(2025, time.March, 3, 9, 30, 0, 0, time.Local),
			DisplayImages: []application.DisplayImage{
				{DisplayMAC: "aa:bb:cc:dd:ee:01", Image: "frame-1.png"},
			},
		}}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/event/add", eventBody))

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %q)", recorder.Code, recorder.Body.String())
		}
		var resp eventResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Event.ID != 42 || resp.Event.Start != "2025-03-03T09:00:00" {
			t.Fatalf("unexpected event payload: %+v", resp.Event)
		}
		if svc.lastCreate.Input.Title != "Standup" {
			t.Fatalf("service received title %q", svc.lastCreate.Input.Title)
		}
		if svc.lastCreate.Input.Start.IsZero() {
			t.Fatal("start was not parsed")
		}
	})

	t.Run("collision maps to the private 569 status with a plain text body", func(t *testing.T) {
		t.Parallel()

		collision := &application.CollisionError{Displays: []string{"aa:bb:cc:dd:ee:01"}}
		svc := &fakeEventService{err: collision}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/event/add", eventBody))

		if recorder.Code != StatusEventCollision {
			t.Fatalf("status = %d, want %d", recorder.Code, StatusEventCollision)
		}
		if got := recorder.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
			t.Fatalf("content type = %q, want text/plain", got)
		}
		if recorder.Body.String() != collision.Message() {
			t.Fatalf("body = %q, want %q", recorder.Body.String(), collision.Message())
		}
	})

	t.Run("wakeup warning maps to 541 and carries the notice text", func(t *testing.T) {
		t.Parallel()

		svc := &fakeEventService{
			event:   application.Event{ID: 7},
			warning: &application.WakeupWarning{Display: "aa:bb:cc:dd:ee:01", Text: "Das Display wacht am Montag nicht auf. Der Termin wird erst beim nächsten Aufwachen angezeigt."},
		}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/event/add", eventBody))

		if recorder.Code != StatusWakeupTiming {
			t.Fatalf("status = %d, want %d", recorder.Code, StatusWakeupTiming)
		}
		if !strings.Contains(recorder.Body.String(), "Montag") {
			t.Fatalf("body = %q, want the notice text", recorder.Body.String())
		}
	})

	t.Run("validation failures arrive as plain text lines", func(t *testing.T) {
		t.Parallel()

		vErr := &application.ValidationError{FieldErrors: map[string]string{
			"title":    "Titel muss zwischen 3 und 30 Zeichen lang sein.",
			"displays": "Mindestens ein Display auswählen.",
		}}
		svc := &fakeEventService{err: vErr}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/event/add", eventBody))

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", recorder.Code)
		}
		want := "Mindestens ein Display auswählen.\nTitel muss zwischen 3 und 30 Zeichen lang sein."
		if recorder.Body.String() != want {
			t.Fatalf("body = %q, want %q", recorder.Body.String(), want)
		}
	})

	t.Run("update parses the path identifier", func(t *testing.T) {
		t.Parallel()

		svc := &fakeEventService{event: application.Event{ID: 9}}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/event/update/9", eventBody))

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %q)", recorder.Code, recorder.Body.String())
		}
		if svc.lastUpdate.EventID != 9 {
			t.Fatalf("service received event id %d", svc.lastUpdate.EventID)
		}
	})

	t.Run("update rejects a non numeric identifier", func(t *testing.T) {
		t.Parallel()

		router := testRouter(t, RouterConfig{Events: NewEventHandler(&fakeEventService{}, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/event/update/nope", eventBody))

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", recorder.Code)
		}
	})

	t.Run("delete returns no content", func(t *testing.T) {
		t.Parallel()

		svc := &fakeEventService{}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/event/delete/5", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", recorder.Code)
		}
		if svc.lastDelete.EventID != 5 {
			t.Fatalf("service received event id %d", svc.lastDelete.EventID)
		}
	})

	t.Run("per display listing is reachable without a session", func(t *testing.T) {
		t.Parallel()

		svc := &fakeEventService{events: []application.Event{{ID: 1, Title: "Standup"}}}
		router := testRouter(t, RouterConfig{Events: NewEventHandler(svc, nil)})

		req := httptest.NewRequest(http.MethodGet, "/event/all/aa:bb:cc:dd:ee:01", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", recorder.Code)
		}
		if svc.lastMAC != "aa:bb:cc:dd:ee:01" {
			t.Fatalf("service received mac %q", svc.lastMAC)
		}
	})

	t.Run("console listing requires a session", func(t *testing.T) {
		t.Parallel()

		router := testRouter(t, RouterConfig{Events: NewEventHandler(&fakeEventService{}, nil)})

		req := httptest.NewRequest(http.MethodGet, "/event/all", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
	})

	t.Run("wrong method advertises the allowed one", func(t *testing.T) {
		t.Parallel()

		router := testRouter(t, RouterConfig{Events: NewEventHandler(&fakeEventService{}, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/event/add", ""))

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", recorder.Code)
		}
		if got := recorder.Header().Get("Allow"); got != http.MethodPost {
			t.Fatalf("Allow = %q, want POST", got)
		}
	})
}

func TestRecurringEventHandlers(t *testing.T) {
	t.Parallel()

	body := `{"title":"Jour fixe","start":"2025-03-03T10:00:00","end":"2025-03-03T11:00:00","displayImages":[{"displayMac":"aa:bb:cc:dd:ee:01","image":"frame-1.png"}],"rrule":"FREQ=WEEKLY;BYDAY=MO;UNTIL=20250331T080000Z"}`

	t.Run("create returns the series summary", func(t *testing.T) {
		t.Parallel()

		svc := &fakeRecurringService{series: application.RecurringEvent{
			GroupID:     "group-1",
			Title:       "Jour fixe",
			Rule:        "FREQ=WEEKLY;BYDAY=MO;UNTIL=20250331T080000Z",
			First:       time.Date(2025, time.March, 3, 10, 0, 0, 0, time.Local),
			Occurrences: 5,
		}}
		router := testRouter(t, RouterConfig{RecurringEvents: NewRecurringEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/recevent/add", body))

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %q)", recorder.Code, recorder.Body.String())
		}
		var resp recurringEventResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Series.GroupID != "group-1" || resp.Series.Occurrences != 5 {
			t.Fatalf("unexpected series payload: %+v", resp.Series)
		}
		if svc.lastCreate.Input.Rule == "" {
			t.Fatal("rule was not forwarded to the service")
		}
	})

	t.Run("collision on any occurrence rejects the series with 569", func(t *testing.T) {
		t.Parallel()

		collision := &application.CollisionError{Displays: []string{"aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02"}}
		svc := &fakeRecurringService{err: collision}
		router := testRouter(t, RouterConfig{RecurringEvents: NewRecurringEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/recevent/add", body))

		if recorder.Code != StatusEventCollision {
			t.Fatalf("status = %d, want %d", recorder.Code, StatusEventCollision)
		}
		if recorder.Body.String() != collision.Message() {
			t.Fatalf("body = %q, want %q", recorder.Body.String(), collision.Message())
		}
	})

	t.Run("delete forwards the group identifier", func(t *testing.T) {
		t.Parallel()

		svc := &fakeRecurringService{}
		router := testRouter(t, RouterConfig{RecurringEvents: NewRecurringEventHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/recevent/delete/group-1", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", recorder.Code)
		}
		if svc.lastDelete.GroupID != "group-1" {
			t.Fatalf("service received group id %q", svc.lastDelete.GroupID)
		}
	})
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		svc := &fakeAuthService{result: application.AuthenticateResult{
			User: application.User{ID: "u-1", Username: "admin", IsAdmin: true},
			Session: application.Session{
				Token:     "token-1",
				ExpiresAt: time.Date(2025, time.March, 2, 12, 0, 0, 0, time.UTC),
			},
		}}
		router := testRouter(t, RouterConfig{Auth: NewAuthHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"geheim123"}`)))

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %q)", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "token-1" {
			t.Fatalf("X-Session-Token = %q", got)
		}
		if !strings.Contains(recorder.Header().Get("Set-Cookie"), "session_token=token-1") {
			t.Fatalf("Set-Cookie = %q", recorder.Header().Get("Set-Cookie"))
		}
		var resp loginResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Token != "token-1" || !resp.IsAdmin {
			t.Fatalf("unexpected login payload: %+v", resp)
		}
	})

	t.Run("invalid credentials map to 401 with an error code", func(t *testing.T) {
		t.Parallel()

		svc := &fakeAuthService{err: application.ErrInvalidCredentials}
		router := testRouter(t, RouterConfig{Auth: NewAuthHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"falsch"}`)))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("error code = %q", resp.ErrorCode)
		}
	})

	t.Run("logout revokes the presented token", func(t *testing.T) {
		t.Parallel()

		svc := &fakeAuthService{}
		router := testRouter(t, RouterConfig{Auth: NewAuthHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/logout", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", recorder.Code)
		}
		if svc.loggedOut != "token-1" {
			t.Fatalf("revoked token = %q", svc.loggedOut)
		}
	})
}
