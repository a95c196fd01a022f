package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers into the route table. Sessions guards the
// console endpoints; display facing endpoints (event polling, checkin, image
// fetch) stay open because the panels carry no session.
type RouterConfig struct {
	Auth            *AuthHandler
	Events          *EventHandler
	RecurringEvents *RecurringEventHandler
	Displays        *DisplayHandler
	Config          *ConfigHandler
	Images          *ImageHandler
	Users           *UserHandler
	Sessions        func(http.Handler) http.Handler
	Middleware      []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := func(h http.HandlerFunc) http.HandlerFunc {
		if cfg.Sessions == nil {
			return h
		}
		wrapped := cfg.Sessions(h)
		return wrapped.ServeHTTP
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Events != nil {
		mux.HandleFunc("/event/add", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Events.Create(w, r)
		}))
		mux.HandleFunc("/event/update/", guard(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/event/update/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Events.Update(w, r.WithContext(ContextWithEventID(r.Context(), id)))
		}))
		mux.HandleFunc("/event/delete/", guard(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/event/delete/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Events.Delete(w, r.WithContext(ContextWithEventID(r.Context(), id)))
		}))
		mux.HandleFunc("/event/all", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Events.List(w, r)
		}))
		mux.HandleFunc("/event/all/", func(w http.ResponseWriter, r *http.Request) {
			mac := strings.TrimPrefix(r.URL.Path, "/event/all/")
			if mac == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Events.ListForDisplay(w, r.WithContext(ContextWithDisplayMAC(r.Context(), mac)))
		})
	}

	if cfg.RecurringEvents != nil {
		mux.HandleFunc("/recevent/add", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.RecurringEvents.Create(w, r)
		}))
		mux.HandleFunc("/recevent/delete/", guard(func(w http.ResponseWriter, r *http.Request) {
			groupID := strings.TrimPrefix(r.URL.Path, "/recevent/delete/")
			if groupID == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.RecurringEvents.Delete(w, r.WithContext(ContextWithGroupID(r.Context(), groupID)))
		}))
		mux.HandleFunc("/recevent/all", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.RecurringEvents.List(w, r)
		}))
	}

	if cfg.Displays != nil {
		mux.HandleFunc("/display/all", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Displays.List(w, r)
		}))
		mux.HandleFunc("/display/add", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Displays.Create(w, r)
		}))
		mux.HandleFunc("/display/update/", guard(func(w http.ResponseWriter, r *http.Request) {
			mac := strings.TrimPrefix(r.URL.Path, "/display/update/")
			if mac == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Displays.Update(w, r.WithContext(ContextWithDisplayMAC(r.Context(), mac)))
		}))
		mux.HandleFunc("/display/delete/", guard(func(w http.ResponseWriter, r *http.Request) {
			mac := strings.TrimPrefix(r.URL.Path, "/display/delete/")
			if mac == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Displays.Delete(w, r.WithContext(ContextWithDisplayMAC(r.Context(), mac)))
		}))
		mux.HandleFunc("/display/checkin/", func(w http.ResponseWriter, r *http.Request) {
			mac := strings.TrimPrefix(r.URL.Path, "/display/checkin/")
			if mac == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Displays.Checkin(w, r.WithContext(ContextWithDisplayMAC(r.Context(), mac)))
		})
	}

	if cfg.Config != nil {
		mux.HandleFunc("/config", guard(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Config.Get(w, r)
			case http.MethodPut:
				cfg.Config.Save(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		}))
	}

	if cfg.Images != nil {
		mux.HandleFunc("/image/upload", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Images.Upload(w, r)
		}))
		mux.HandleFunc("/image/all", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Images.List(w, r)
		}))
		mux.HandleFunc("/image/delete/", guard(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/image/delete/")
			if name == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Images.Delete(w, r.WithContext(ContextWithImageName(r.Context(), name)))
		}))
		// Panels fetch rendered images by name without a session.
		mux.HandleFunc("/image/", func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/image/")
			if name == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Images.Fetch(w, r.WithContext(ContextWithImageName(r.Context(), name)))
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/user/add", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.Create(w, r)
		}))
		mux.HandleFunc("/user/all", guard(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Users.List(w, r)
		}))
		mux.HandleFunc("/user/delete/", guard(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/user/delete/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Users.Delete(w, r.WithContext(ContextWithUserID(r.Context(), id)))
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
