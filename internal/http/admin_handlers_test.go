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

type fakeDisplayService struct {
	display  application.Display
	displays []application.Display
	err      error

	touched    string
	lastDelete application.DeleteDisplayParams
}

func (f *fakeDisplayService) Create(_ context.Context, params application.CreateDisplayParams) (application.Display, error) {
	return f.display, f.err
}

func (f *fakeDisplayService) Update(_ context.Context, params application.UpdateDisplayParams) (application.Display, error) {
	return f.display, f.err
}

func (f *fakeDisplayService) Delete(_ context.Context, params application.DeleteDisplayParams) error {
	f.lastDelete = params
	return f.err
}

func (f *fakeDisplayService) List(context.Context) ([]application.Display, error) {
	return f.displays, f.err
}

func (f *fakeDisplayService) Touch(_ context.Context, mac string) error {
	f.touched = mac
	return f.err
}

type fakeConfigService struct {
	settings application.WakeSettings
	err      error

	saved *application.SaveWakeSettingsParams
}

func (f *fakeConfigService) Get(context.Context) (application.WakeSettings, error) {
	return f.settings, f.err
}

func (f *fakeConfigService) Save(_ context.Context, params application.SaveWakeSettingsParams) error {
	f.saved = &params
	return f.err
}

type fakeImageService struct {
	image  application.Image
	images []application.Image
	err    error

	savedInput application.ImageInput
}

func (f *fakeImageService) Save(_ context.Context, params application.SaveImageParams) (application.Image, error) {
	f.savedInput = params.Input
	return f.image, f.err
}

func (f *fakeImageService) Get(context.Context, string) (application.Image, error) {
	return f.image, f.err
}

func (f *fakeImageService) List(context.Context) ([]application.Image, error) {
	return f.images, f.err
}

func (f *fakeImageService) Delete(_ context.Context, params application.DeleteImageParams) error {
	return f.err
}

type fakeUserService struct {
	user  application.User
	users []application.User
	err   error

	lastDelete application.DeleteUserParams
}

func (f *fakeUserService) Create(_ context.Context, params application.CreateUserParams) (application.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) List(context.Context, application.Principal) ([]application.User, error) {
	return f.users, f.err
}

func (f *fakeUserService) Delete(_ context.Context, params application.DeleteUserParams) error {
	f.lastDelete = params
	return f.err
}

func TestDisplayHandlers(t *testing.T) {
	t.Parallel()

	t.Run("register returns the stored display", func(t *testing.T) {
		t.Parallel()

		svc := &fakeDisplayService{display: application.Display{MAC: "aa:bb:cc:dd:ee:01", Name: "Foyer", Width: 800, Height: 480}}
		router := testRouter(t, RouterConfig{Displays: NewDisplayHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/display/add", `{"mac":"AA:BB:CC:DD:EE:01","name":"Foyer","width":800,"height":480}`))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %q)", recorder.Code, recorder.Body.String())
		}
		var resp displayResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Display.MAC != "aa:bb:cc:dd:ee:01" {
			t.Fatalf("mac = %q", resp.Display.MAC)
		}
	})

	t.Run("forbidden mutations surface the auth error code", func(t *testing.T) {
		t.Parallel()

		svc := &fakeDisplayService{err: application.ErrUnauthorized}
		router := testRouter(t, RouterConfig{Displays: NewDisplayHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/display/delete/aa:bb:cc:dd:ee:01", ""))

		if recorder.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "AUTH_FORBIDDEN" {
			t.Fatalf("error code = %q", resp.ErrorCode)
		}
	})

	t.Run("checkin is reachable without a session", func(t *testing.T) {
		t.Parallel()

		svc := &fakeDisplayService{}
		router := testRouter(t, RouterConfig{Displays: NewDisplayHandler(svc, nil)})

		req := httptest.NewRequest(http.MethodPost, "/display/checkin/aa:bb:cc:dd:ee:01", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204 (body %q)", recorder.Code, recorder.Body.String())
		}
		if svc.touched != "aa:bb:cc:dd:ee:01" {
			t.Fatalf("touched mac = %q", svc.touched)
		}
	})
}

func TestConfigHandlers(t *testing.T) {
	t.Parallel()

	t.Run("get round-trips the weekday windows", func(t *testing.T) {
		t.Parallel()

		svc := &fakeConfigService{settings: application.WakeSettings{
			WakeIntervalMinutes: 30,
			LeadMinutes:         10,
			FollowUpMinutes:     10,
			DeleteAfterDays:     30,
			WeekdayTimes: map[time.Weekday]application.WeekdayWindow{
				time.Monday: {Enabled: true, Start: "07:00", End: "19:00"},
			},
		}}
		router := testRouter(t, RouterConfig{Config: NewConfigHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/config", ""))

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", recorder.Code)
		}
		var resp configDTO
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		monday, ok := resp.WeekdayTimes["monday"]
		if !ok || !monday.Enabled || monday.Start != "07:00" {
			t.Fatalf("unexpected monday window: %+v (present %v)", monday, ok)
		}
	})

	t.Run("save forwards the parsed settings", func(t *testing.T) {
		t.Parallel()

		svc := &fakeConfigService{}
		router := testRouter(t, RouterConfig{Config: NewConfigHandler(svc, nil)})

		body := `{"wakeIntervalMinutes":15,"leadMinutes":5,"followUpMinutes":10,"deleteAfterDays":14,"weekdayTimes":{"tuesday":{"enabled":true,"start":"08:00","end":"18:00"}}}`
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPut, "/config", body))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204 (body %q)", recorder.Code, recorder.Body.String())
		}
		if svc.saved == nil {
			t.Fatal("settings were not forwarded")
		}
		if svc.saved.Settings.WakeIntervalMinutes != 15 {
			t.Fatalf("interval = %d", svc.saved.Settings.WakeIntervalMinutes)
		}
		window, ok := svc.saved.Settings.WeekdayTimes[time.Tuesday]
		if !ok || window.Start != "08:00" {
			t.Fatalf("tuesday window = %+v (present %v)", window, ok)
		}
	})
}

func TestImageHandlers(t *testing.T) {
	t.Parallel()

	t.Run("upload stores raw bytes with the request content type", func(t *testing.T) {
		t.Parallel()

		svc := &fakeImageService{image: application.Image{Name: "frame-1.png", ContentType: "image/png"}}
		router := testRouter(t, RouterConfig{Images: NewImageHandler(svc, nil)})

		req := authedRequest(http.MethodPost, "/image/upload?display=aa:bb:cc:dd:ee:01", "not-really-a-png")
		req.Header.Set("Content-Type", "image/png")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %q)", recorder.Code, recorder.Body.String())
		}
		if svc.savedInput.DisplayMAC != "aa:bb:cc:dd:ee:01" || svc.savedInput.ContentType != "image/png" {
			t.Fatalf("unexpected saved input: %+v", svc.savedInput)
		}
		if string(svc.savedInput.Data) != "not-really-a-png" {
			t.Fatalf("data = %q", svc.savedInput.Data)
		}
	})

	t.Run("fetch serves the stored bytes unauthenticated", func(t *testing.T) {
		t.Parallel()

		svc := &fakeImageService{image: application.Image{Name: "frame-1.png", ContentType: "image/png", Data: []byte{1, 2, 3}}}
		router := testRouter(t, RouterConfig{Images: NewImageHandler(svc, nil)})

		req := httptest.NewRequest(http.MethodGet, "/image/frame-1.png", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", recorder.Code)
		}
		if got := recorder.Header().Get("Content-Type"); got != "image/png" {
			t.Fatalf("content type = %q", got)
		}
		if recorder.Body.Len() != 3 {
			t.Fatalf("body length = %d", recorder.Body.Len())
		}
	})

	t.Run("missing images map to 404", func(t *testing.T) {
		t.Parallel()

		svc := &fakeImageService{err: application.ErrNotFound}
		router := testRouter(t, RouterConfig{Images: NewImageHandler(svc, nil)})

		req := httptest.NewRequest(http.MethodGet, "/image/missing.png", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", recorder.Code)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns the account without credentials", func(t *testing.T) {
		t.Parallel()

		svc := &fakeUserService{user: application.User{ID: "u-2", Username: "viewer"}}
		router := testRouter(t, RouterConfig{Users: NewUserHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/user/add", `{"username":"viewer","password":"geheim123"}`))

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %q)", recorder.Code, recorder.Body.String())
		}
		if strings.Contains(recorder.Body.String(), "geheim123") {
			t.Fatal("response leaked the password")
		}
	})

	t.Run("validation errors carry field details as JSON", func(t *testing.T) {
		t.Parallel()

		svc := &fakeUserService{err: &application.ValidationError{FieldErrors: map[string]string{
			"password": "Passwort muss mindestens 8 Zeichen lang sein.",
		}}}
		router := testRouter(t, RouterConfig{Users: NewUserHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/user/add", `{"username":"viewer","password":"kurz"}`))

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Errors["password"] == "" {
			t.Fatalf("missing field error: %+v", resp.Errors)
		}
	})

	t.Run("delete forwards the path identifier", func(t *testing.T) {
		t.Parallel()

		svc := &fakeUserService{}
		router := testRouter(t, RouterConfig{Users: NewUserHandler(svc, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, authedRequest(http.MethodDelete, "/user/delete/u-2", ""))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", recorder.Code)
		}
		if svc.lastDelete.UserID != "u-2" {
			t.Fatalf("deleted user id = %q", svc.lastDelete.UserID)
		}
	})
}
