// Package http provides HTTP handlers and middleware for the lab API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","user":{...}} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's own session token taken
//     from the Authorization header or session cookie. Returns 204 No Content.
//   - DELETE /sessions/{token}: administrator revocation of an arbitrary token.
//   - GET /tutors, POST /tutors, DELETE /tutors/{id}: tutor directory
//     endpoints exchanging the `tutorDTO` payload defined in tutor_handler.go.
//     Listing is available to any authenticated principal while mutations
//     require admin privileges.
//   - GET /shifts, POST /shifts, DELETE /shifts/{id}: shift registry
//     endpoints exchanging the `shiftDTO` payload defined in shift_handler.go.
//     `GET /shifts?tutor_id=...` narrows the listing to one tutor and is the
//     only shift read a non-admin may perform, for their own id.
//   - GET /labs, GET /labs/{name}/status, PUT /labs/{name}/status: the lab
//     status board. Updates are guarded by the open-lab edit rule.
//   - GET /lab-sessions?open=true or ?start=...&end=...: the append-only
//     open/close ledger, openedAt ascending.
//   - GET /reports/schedule?tutor_id=...&week_start=YYYY-MM-DD and
//     GET /reports/activity?week_start=YYYY-MM-DD: weekly PDF reports served
//     as application/pdf.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
