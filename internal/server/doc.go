// Package server provides HTTP routing, middleware, and the JSON handlers of the audiobox API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] patterns ("GET /music/getid/{trackId}"),
// so method matching and path values are handled by the mux.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes.
// A handler serving several routes dispatches on [http.Request.Pattern].
//
// # Authentication
//
// [RequireAuth] reads "Authorization: Bearer <token>". A missing token is answered with 401, a token
// that fails verification with 403. The verified caller is available through [SessionFrom].
//
// # Errors
//
// Every error body is {"error": "..."}. Service errors are mapped by sentinel: invalid input 400,
// not found 404, conflict 409, upstream catalog failures 502, anything else 500. Upstream details
// are logged, never returned.
package server
