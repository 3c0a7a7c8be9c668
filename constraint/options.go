package constraint

// Option configures a Validator.
type Option func(*Validator)

// WithRedactedValues omits offending values from messages. Use it for
// parameters that may carry credentials, such as headers.
func WithRedactedValues() Option {
	return func(v *Validator) {
		v.redactValues = true
	}
}

// WithLenientFormats reports string format failures as warnings instead of
// errors, so they no longer reject the value.
func WithLenientFormats() Option {
	return func(v *Validator) {
		v.formatSeverity = SeverityWarning
	}
}
