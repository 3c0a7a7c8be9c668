package binder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/elnormous/contenttype"
	"github.com/go-chi/chi/v5"

	"github.com/erraggy/oasbind/oaserrors"
)

// ErrMalformedForm is returned by NewHTTPRequest when a form body cannot
// be decoded.
var ErrMalformedForm = errors.New("binder: malformed form body")

// HTTPRequest adapts an *http.Request to RequestContext. Path parameters
// are read from the chi route context unless set with WithPathParams.
type HTTPRequest struct {
	req        *http.Request
	query      url.Values
	pathParams map[string]string
	body       BodySource
	mediaType  string
	params     *Params
}

// NewHTTPRequest reads the body of r (at most maxBodySize bytes) and wraps
// r. Form bodies are decoded; any other body is kept as raw bytes and
// r.Body is replaced so handlers can read it again.
//
// An oversized body yields an *oaserrors.ResourceLimitError.
func NewHTTPRequest(r *http.Request, maxBodySize int64) (*HTTPRequest, error) {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	h := &HTTPRequest{
		req:       r,
		query:     r.URL.Query(),
		mediaType: r.Header.Get("Content-Type"),
		params:    NewParams(),
	}
	if r.Body == nil || r.Body == http.NoBody {
		return h, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)

	mt, err := contenttype.GetMediaType(r)
	if err == nil && isFormMediaType(mt) {
		if err := h.readForm(mt, maxBodySize); err != nil {
			return nil, err
		}
		return h, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err, maxBodySize)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	h.body = BodySource{Raw: raw}
	return h, nil
}

func (h *HTTPRequest) readForm(mt contenttype.MediaType, maxBodySize int64) error {
	var err error
	if mt.Matches(multipartMediaType) {
		err = h.req.ParseMultipartForm(maxBodySize)
	} else {
		err = h.req.ParseForm()
	}
	if err != nil {
		return bodyError(err, maxBodySize)
	}
	h.body = BodySource{Value: formBody(h.req.PostForm), Parsed: true, Form: true}
	return nil
}

func bodyError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &oaserrors.ResourceLimitError{
			ResourceType: "body_size",
			Limit:        limit,
			Message:      fmt.Sprintf("request body exceeds %d bytes", limit),
		}
	}
	return fmt.Errorf("%w: %v", ErrMalformedForm, err)
}

// WithPathParams sets path parameter values explicitly, for routers other
// than chi.
func (h *HTTPRequest) WithPathParams(params map[string]string) *HTTPRequest {
	h.pathParams = params
	return h
}

// Values implements RequestContext.
func (h *HTTPRequest) Values(loc Location, name string) ([]string, bool) {
	switch loc {
	case LocationPath:
		return h.pathValue(name)
	case LocationQuery:
		v, ok := h.query[name]
		return v, ok
	case LocationHeader:
		v := h.req.Header.Values(name)
		return v, len(v) > 0
	case LocationCookie:
		var out []string
		for _, c := range h.req.Cookies() {
			if c.Name == name {
				out = append(out, c.Value)
			}
		}
		return out, len(out) > 0
	case LocationFormData:
		v, ok := h.req.PostForm[name]
		return v, ok
	}
	return nil, false
}

func (h *HTTPRequest) pathValue(name string) ([]string, bool) {
	if h.pathParams != nil {
		v, ok := h.pathParams[name]
		if !ok {
			return nil, false
		}
		return []string{v}, true
	}

	rctx := chi.RouteContext(h.req.Context())
	if rctx == nil {
		return nil, false
	}
	for i, key := range rctx.URLParams.Keys {
		if key != name {
			continue
		}
		v := rctx.URLParams.Values[i]
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		return []string{v}, true
	}
	return nil, false
}

// Files implements FileSource.
func (h *HTTPRequest) Files(name string) ([]*multipart.FileHeader, bool) {
	if h.req.MultipartForm == nil {
		return nil, false
	}
	files, ok := h.req.MultipartForm.File[name]
	return files, ok
}

// Body implements RequestContext.
func (h *HTTPRequest) Body() BodySource {
	return h.body
}

// ContentType implements RequestContext.
func (h *HTTPRequest) ContentType() string {
	return h.mediaType
}

// Store implements RequestContext.
func (h *HTTPRequest) Store(loc Location, name string, v any) {
	h.params.Set(loc, name, v)
}

// Params returns the resolved values.
func (h *HTTPRequest) Params() *Params {
	return h.params
}

var (
	_ RequestContext = (*HTTPRequest)(nil)
	_ FileSource     = (*HTTPRequest)(nil)
)
