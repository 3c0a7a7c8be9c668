package binder

import (
	"github.com/erraggy/oasbind/constraint"
	"github.com/erraggy/oasbind/parser"
)

// ConstraintValidator checks a coerced value against its schema. path names
// the parameter and prefixes nested violation paths. A non-nil error means
// the schema could not be evaluated and is treated as a configuration bug.
//
// *constraint.Validator is the default implementation.
type ConstraintValidator interface {
	Validate(value any, schema *parser.Schema, path string) ([]constraint.Violation, error)
}

// ValidatorFunc adapts a function to ConstraintValidator.
type ValidatorFunc func(value any, schema *parser.Schema, path string) ([]constraint.Violation, error)

// Validate implements ConstraintValidator.
func (f ValidatorFunc) Validate(value any, schema *parser.Schema, path string) ([]constraint.Violation, error) {
	return f(value, schema, path)
}

var (
	_ ConstraintValidator = (*constraint.Validator)(nil)
	_ ConstraintValidator = ValidatorFunc(nil)
)
