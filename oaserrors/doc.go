// Package oaserrors provides the error types shared by the oasbind packages.
//
// Import path: github.com/erraggy/oasbind/oaserrors
//
// Errors fall into two classes:
//
//   - request-time failures, [ResolutionError], which always map to HTTP 400
//     and carry a message safe to show to API clients
//   - load-time and configuration failures ([ParseError], [ReferenceError],
//     [ResourceLimitError], [ConfigError]) which indicate a broken document or
//     deployment and must not be reported as client errors
//
// # Sentinel Errors
//
//   - [ErrParse]: any [ParseError]
//   - [ErrReference]: any [ReferenceError]
//   - [ErrCircularReference]: a [ReferenceError] with IsCircular set
//   - [ErrResourceLimit]: any [ResourceLimitError]
//   - [ErrConfig]: any [ConfigError]
//   - [ErrResolution]: any [ResolutionError]
//   - [ErrMissingParameter], [ErrInvalidFormat], [ErrSchemaValidation]: a
//     [ResolutionError] of the matching [Kind]
//
// # Usage
//
//	value, err := resolver.Resolve(ctx, desc, req)
//	var resErr *oaserrors.ResolutionError
//	switch {
//	case errors.As(err, &resErr):
//	    http.Error(w, resErr.Error(), resErr.Status())
//	case err != nil:
//	    http.Error(w, "internal error", http.StatusInternalServerError)
//	}
package oaserrors
