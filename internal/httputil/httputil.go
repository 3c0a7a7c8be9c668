// Package httputil holds the HTTP method vocabulary shared by the parser,
// the binder and the command line tools.
package httputil

import (
	"net/http"
	"slices"
	"strings"
)

// Methods lists the operation methods an OpenAPI path item can declare, in
// the order operations are reported. TRACE is OAS 3.x only but harmless to
// look up in 2.0 documents.
var Methods = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// FieldName returns the path item key declaring method, e.g. "get".
func FieldName(method string) string {
	return strings.ToLower(method)
}

// NormalizeMethod upper-cases method. An empty method means GET.
func NormalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

// IsMethod reports whether method, in any case, is one of Methods.
func IsMethod(method string) bool {
	return slices.Contains(Methods, strings.ToUpper(method))
}
