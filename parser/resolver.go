package parser

import (
	"strconv"
	"strings"

	"github.com/erraggy/oasbind/oaserrors"
)

// maxRefChain bounds $ref-to-$ref indirection for non-schema objects.
const maxRefChain = 32

// refResolver resolves local JSON pointer references against the raw document.
type refResolver struct {
	root map[string]any
}

func newRefResolver(root map[string]any) *refResolver {
	return &refResolver{root: root}
}

// resolve returns the value a local reference points at.
func (r *refResolver) resolve(ref string) (any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, &oaserrors.ReferenceError{Ref: ref, Message: "only local references are supported"}
	}

	pointer := strings.TrimPrefix(ref, "#")
	if pointer == "" || pointer == "/" {
		return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true, Message: "reference to document root"}
	}

	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	current := any(r.root)
	for i, part := range parts {
		part = unescapeJSONPointer(part)

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, &oaserrors.ReferenceError{
					Ref:     ref,
					Message: "missing key " + strconv.Quote(part) + " at #/" + strings.Join(parts[:i], "/"),
				}
			}
			current = next
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(v) {
				return nil, &oaserrors.ReferenceError{Ref: ref, Message: "invalid array index " + strconv.Quote(part)}
			}
			current = v[index]
		default:
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "cannot traverse into scalar at #/" + strings.Join(parts[:i], "/")}
		}
	}
	return current, nil
}

// follow dereferences a parameter, request body or path item, including
// chains of references. It returns the object and the last ref followed.
func (r *refResolver) follow(node any) (map[string]any, string, error) {
	var lastRef string
	seen := make(map[string]bool)
	for range maxRefChain {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, lastRef, nil
		}
		ref, ok := m["$ref"].(string)
		if !ok {
			return m, lastRef, nil
		}
		if seen[ref] {
			return nil, ref, &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		seen[ref] = true
		lastRef = ref

		next, err := r.resolve(ref)
		if err != nil {
			return nil, ref, err
		}
		node = next
	}
	return nil, lastRef, &oaserrors.ResourceLimitError{ResourceType: "ref_chain", Limit: maxRefChain}
}

func unescapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
