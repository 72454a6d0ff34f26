// Package http provides HTTP handlers and middleware for the HR dashboard API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","user":{"id","email","name","role"}} with the token also
//     stored in the `auth-token` cookie. GET /login redirects signed-in callers to /.
//   - POST /logout: revokes the current token taken from the Authorization header or
//     cookie, clears the cookie and returns 204 No Content.
//   - GET /dashboard?page=N: the current roster view exchanging the `viewDTO` payload
//     defined in dashboard_handler.go. PATCH /filters applies a partial filter update,
//     POST /filters/toggle flips one department or rating, GET /facets lists filter
//     values and POST /roster/reload refetches the remote directory.
//   - POST /employees, GET /employees/{id}, POST /employees/{id}/reviews and
//     POST /employees/{id}/projects: roster entries exchanging the `employeeDTO`
//     payload defined in employee_handler.go.
//   - GET /bookmarks, PUT /bookmarks/{employeeId}, DELETE /bookmarks/{employeeId}:
//     the saved employee list.
//   - GET /analytics: department averages, rating distribution and bookmark trend.
//
// Every route other than /login requires a valid session. Request/response DTOs
// live alongside their respective handlers so tests and documentation share the
// same ground truth.
package http
