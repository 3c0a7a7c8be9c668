// Package constraint implements the default constraint validator used by the
// binder.
//
// A [Validator] checks an already-coerced value against a [parser.Schema]:
// type, enum, string length and pattern, formats, numeric bounds, array and
// object shape, and allOf/anyOf/oneOf composition. It reports every problem
// it finds as a [Violation]; the binder surfaces the first blocking one.
//
// Enum failures use the message
//
//	No enum match for: "kitty kat"
//
// where the rejected value is JSON encoded, so strings appear quoted.
//
// Schema problems that make a value impossible to check, such as a pattern
// that does not compile, are returned as an error wrapping
// [oaserrors.ErrConfig] rather than as violations.
package constraint
