// Package http provides HTTP handlers and middleware for the signage API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"username","password"}.
//     Response: {"token","expires_at","is_admin"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content.
//   - POST /event/add, PUT /event/update/{id}, DELETE /event/delete/{id},
//     GET /event/all: console event endpoints exchanging the `eventDTO`
//     payload defined in event_handler.go. Failures on the mutating endpoints
//     arrive as plain text so the console can show the body verbatim: 569
//     signals a collision (the event was not saved), 541 signals that the
//     event was saved but the target display wakes too late to show it.
//   - GET /event/all/{mac}: events scoped to one display. Panels poll this
//     without a session.
//   - POST /recevent/add, DELETE /recevent/delete/{groupId}, GET /recevent/all:
//     recurring series endpoints using the same plain text failure dialect.
//   - GET /display/all, POST /display/add, PUT /display/update/{mac},
//     DELETE /display/delete/{mac}: display registry endpoints.
//     POST /display/checkin/{mac} records a wake heartbeat and is
//     unauthenticated.
//   - GET/PUT /config: wake window and retention settings.
//   - POST /image/upload, GET /image/all, DELETE /image/delete/{name}:
//     rendered frame storage. GET /image/{name} serves raw bytes for the
//     panels without a session.
//   - POST /user/add, GET /user/all, DELETE /user/delete/{id}: administrator
//     controlled account management.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
