// Package parser loads OpenAPI 2.0 and 3.x documents into the immutable
// schema model used by the binder.
//
// Unlike a general purpose OpenAPI toolkit, the parser keeps only what is
// needed to bind request parameters: paths, operations, parameters, request
// bodies and their fully resolved schemas.
//
// # Quick Start
//
//	result, err := parser.ParseWithOptions(
//		parser.WithFilePath("openapi.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for path, item := range result.Paths {
//		for _, op := range item.Operations() {
//			fmt.Println(op.Method, path, op.OperationID)
//		}
//	}
//
// # References
//
// Local references ("#/definitions/Pet", "#/components/schemas/Pet",
// "#/components/parameters/limit", ...) are resolved while the model is
// built. Each referenced schema is built once and shared by pointer.
// External file and URL references are not supported and produce a
// [oaserrors.ReferenceError]. Circular references are rejected with a
// [oaserrors.ReferenceError] whose IsCircular flag is set.
//
// # Defaults
//
// A declared default becomes a [Default]. Defaults written as strings are
// kept as [DefaultEncoded] text and coerced at request time exactly like a
// value sent by a client, so `default: '{"Name": "Fido"}'` on an object schema
// behaves the same as the literal object form. Every other default is a
// [DefaultLiteral] and is used as-is.
//
// Numbers in defaults and enums are normalised to float64 so they compare
// equal to decoded JSON request values.
//
// # Immutability
//
// The returned model must not be modified. It is safe to share across
// goroutines without locking.
package parser
