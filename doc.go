// Package oasbind binds HTTP request parameters to the schemas declared in an
// OpenAPI document.
//
// Every declared parameter (path, query, header, formData or body) runs
// through the same resolution pipeline:
//
//	extract -> default -> coerce -> validate
//
// The result is either a typed value, written back into the request, or a
// classified 400 error whose message callers can show to end users.
//
// # Packages
//
//   - parser: load OpenAPI 2.0 and 3.x documents into an immutable schema model
//   - binder: the resolution pipeline, net/http adapter and chi middleware
//   - constraint: the default constraint validator (type, enum, bounds, shape)
//   - oaserrors: error types shared by all packages
//
// # Quick Start
//
//	result, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	spec, err := binder.Compile(result)
//	if err != nil {
//		log.Fatal(err)
//	}
//	b, err := binder.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	r := chi.NewRouter()
//	err = b.Mount(r, spec, map[string]http.Handler{
//		"updatePet": http.HandlerFunc(updatePet),
//	})
//
// Inside the handler, resolved values are available from the request context:
//
//	params := binder.ParamsFrom(r.Context())
//	pet := params.Body()
package oasbind
