// Package binder resolves the declared parameters of an OpenAPI operation
// from an incoming HTTP request.
//
// Every parameter goes through the same pipeline:
//
//	Extracting -> Defaulting -> Coercing -> Validating -> Resolved
//	                                                  \-> Failed
//
// Extraction reads the raw value from its location (path, query, header,
// cookie, formData or body). A missing or blank value takes the schema
// default, whether the default is declared as a literal or as encoded JSON
// text. Coercion turns text into the schema's shape: integers become int64,
// numbers float64, booleans bool, and object bodies are decoded from JSON.
// The coerced value is then checked by a [ConstraintValidator], by default
// [constraint.Validator].
//
// # Basic Usage
//
//	parsed, _ := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	spec, err := binder.Compile(parsed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, _ := binder.New(binder.WithLogger(logger))
//
//	router := chi.NewRouter()
//	err = r.Mount(router, spec, map[string]http.Handler{
//	    "updatePet": http.HandlerFunc(updatePet),
//	})
//
// Handlers read resolved values from the request context:
//
//	func updatePet(w http.ResponseWriter, req *http.Request) {
//	    params := binder.ParamsFrom(req.Context())
//	    pet := params.Body().(map[string]any)
//	    name := params.Path("PetName").(string)
//	    ...
//	}
//
// # Errors
//
// A request whose parameters cannot be resolved is answered by the
// configured [ErrorHandler], by default an RFC 7807 problem document:
//
//	Missing required body parameter "PetData"
//	Invalid body parameter "PetData": PetData.Type: No enum match for: "kitty kat"
//
// Both are 400 responses. A body over the size limit is 413. Any other
// failure, including a validator that cannot evaluate its schema, is a 500
// with a generic message.
//
// Header values never appear in error messages.
//
// # Without net/http
//
// [MapRequest] implements [RequestContext] in memory, so [Resolver.Resolve]
// and [Resolver.ResolveAll] can be driven from a CLI, a test or a message
// consumer.
package binder
