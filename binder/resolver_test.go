package binder

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbind/constraint"
	"github.com/erraggy/oasbind/internal/testutil"
	"github.com/erraggy/oasbind/oaserrors"
	"github.com/erraggy/oasbind/parser"
)

func compileFixture(t *testing.T, doc string) *Spec {
	t.Helper()
	spec, err := Compile(testutil.ParseFixture(t, doc))
	require.NoError(t, err)
	return spec
}

func mustOperation(t *testing.T, spec *Spec, id string) *Operation {
	t.Helper()
	op, ok := spec.Operation(id)
	require.True(t, ok, "operation %s", id)
	return op
}

// petDataBody returns a copy of the updatePet body descriptor so tests can
// change it without touching the shared compiled spec.
func petDataBody(t *testing.T, required bool, def any) *Descriptor {
	t.Helper()
	op := mustOperation(t, compileFixture(t, testutil.PetStore20), "updatePet")
	d := *op.Body()
	d.Required = required
	if def != nil {
		schema := *d.Schema
		schema.Default = parser.NewDefault(def)
		d.Schema = &schema
	}
	return &d
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func TestResolvePetData(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t)

	t.Run("valid object", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(`{"Name":"Fido","Type":"dog"}`), "application/json")
		res, err := r.Resolve(ctx, petDataBody(t, true, nil), rc)
		require.NoError(t, err)
		assert.Equal(t, StateResolved, res.State)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, res.Value)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, rc.Params().Body())
	})

	t.Run("already parsed object", func(t *testing.T) {
		body := map[string]any{"Name": "Fido", "Type": "dog"}
		rc := NewMapRequest().SetParsedBody(body, "application/json")
		res, err := r.Resolve(ctx, petDataBody(t, true, nil), rc)
		require.NoError(t, err)
		assert.Equal(t, body, res.Value)
	})

	t.Run("optional and unspecified", func(t *testing.T) {
		rc := NewMapRequest()
		res, err := r.Resolve(ctx, petDataBody(t, false, nil), rc)
		require.NoError(t, err)
		assert.Equal(t, StateResolved, res.State)
		assert.True(t, res.Absent)
		assert.Nil(t, res.Value)
		assert.False(t, rc.Params().HasBody())
		assert.Empty(t, rc.Params().Flatten())
	})

	t.Run("literal object default", func(t *testing.T) {
		rc := NewMapRequest()
		res, err := r.Resolve(ctx, petDataBody(t, false, map[string]any{"Name": "Fido", "Type": "dog"}), rc)
		require.NoError(t, err)
		assert.True(t, res.Defaulted)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, rc.Params().Body())
	})

	t.Run("encoded string default", func(t *testing.T) {
		rc := NewMapRequest()
		res, err := r.Resolve(ctx, petDataBody(t, false, `{"Name": "Fido", "Type": "dog"}`), rc)
		require.NoError(t, err)
		assert.True(t, res.Defaulted)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, rc.Params().Body())
	})

	t.Run("blank body uses default", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(""), "text/plain")
		res, err := r.Resolve(ctx, petDataBody(t, false, `{"Name": "Fido", "Type": "dog"}`), rc)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, res.Value)
	})

	t.Run("whitespace body uses default", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte("  \n"), "text/plain")
		res, err := r.Resolve(ctx, petDataBody(t, false, `{"Name": "Fido", "Type": "dog"}`), rc)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"Name": "Fido", "Type": "dog"}, res.Value)
	})

	t.Run("blank required body", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(""), "text/plain")
		res, err := r.Resolve(ctx, petDataBody(t, true, nil), rc)
		require.Error(t, err)
		assert.Equal(t, StateFailed, res.State)
		assert.ErrorIs(t, err, oaserrors.ErrMissingParameter)
		assert.Contains(t, err.Error(), `Missing required body parameter "PetData"`)
		assert.Equal(t, 400, oaserrors.HTTPStatus(err))
	})

	t.Run("required and unspecified", func(t *testing.T) {
		_, err := r.Resolve(ctx, petDataBody(t, true, nil), NewMapRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `Missing required body parameter "PetData"`)
	})

	t.Run("enum violation", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(`{"Name":"Fido","Type":"kitty kat"}`), "application/json")
		res, err := r.Resolve(ctx, petDataBody(t, true, nil), rc)
		require.Error(t, err)
		assert.Nil(t, res.Value)
		assert.ErrorIs(t, err, oaserrors.ErrSchemaValidation)
		assert.Contains(t, err.Error(), `No enum match for: "kitty kat"`)
		assert.Equal(t, 400, oaserrors.HTTPStatus(err))
		assert.False(t, rc.Params().HasBody())

		var resErr *oaserrors.ResolutionError
		require.True(t, errors.As(err, &resErr))
		require.NotEmpty(t, resErr.Violations)
		assert.Equal(t, "PetData.Type", resErr.Violations[0].Path)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(`{"Name":`), "application/json")
		_, err := r.Resolve(ctx, petDataBody(t, true, nil), rc)
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrInvalidFormat)
		assert.Contains(t, err.Error(), `Invalid body parameter "PetData": invalid JSON`)
	})

	t.Run("no fallback to default after coercion failure", func(t *testing.T) {
		rc := NewMapRequest().SetBody([]byte(`not json`), "text/plain")
		_, err := r.Resolve(ctx, petDataBody(t, false, map[string]any{"Name": "Fido"}), rc)
		require.Error(t, err)
		assert.ErrorIs(t, err, oaserrors.ErrInvalidFormat)
	})
}

func TestResolveDefaultsAreNotShared(t *testing.T) {
	r := newTestResolver(t)
	d := petDataBody(t, false, map[string]any{"Name": "Fido", "Tags": []any{"a"}})

	first, err := r.Resolve(context.Background(), d, NewMapRequest())
	require.NoError(t, err)
	first.Value.(map[string]any)["Name"] = "Rex"

	second, err := r.Resolve(context.Background(), d, NewMapRequest())
	require.NoError(t, err)
	assert.Equal(t, "Fido", second.Value.(map[string]any)["Name"])
}

func TestResolveScalars(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver(t)
	op := mustOperation(t, compileFixture(t, testutil.PetStore20), "findPets")

	tests := []struct {
		name    string
		set     func(*MapRequest)
		param   string
		loc     Location
		want    any
		wantErr string
	}{
		{
			name:  "default applied",
			set:   func(*MapRequest) {},
			param: "limit",
			loc:   LocationQuery,
			want:  int64(20),
		},
		{
			name:  "integer coerced",
			set:   func(m *MapRequest) { m.Set(LocationQuery, "limit", "42") },
			param: "limit",
			loc:   LocationQuery,
			want:  int64(42),
		},
		{
			name:    "integer mismatch",
			set:     func(m *MapRequest) { m.Set(LocationQuery, "limit", "ten") },
			param:   "limit",
			loc:     LocationQuery,
			wantErr: `Invalid query parameter "limit": "ten" is not a valid integer`,
		},
		{
			name:    "above maximum",
			set:     func(m *MapRequest) { m.Set(LocationQuery, "limit", "101") },
			param:   "limit",
			loc:     LocationQuery,
			wantErr: `Invalid query parameter "limit": value 101 exceeds maximum 100`,
		},
		{
			name:  "blank uses default",
			set:   func(m *MapRequest) { m.Set(LocationQuery, "limit", " ") },
			param: "limit",
			loc:   LocationQuery,
			want:  int64(20),
		},
		{
			name:  "csv array",
			set:   func(m *MapRequest) { m.Set(LocationQuery, "tags", "a,b,c") },
			param: "tags",
			loc:   LocationQuery,
			want:  []any{"a", "b", "c"},
		},
		{
			name:  "repeated keys join",
			set:   func(m *MapRequest) { m.Set(LocationQuery, "tags", "a,b", "c") },
			param: "tags",
			loc:   LocationQuery,
			want:  []any{"a", "b", "c"},
		},
		{
			name:  "header case-insensitive",
			set:   func(m *MapRequest) { m.Set(LocationHeader, "x-request-id", "abc") },
			param: "X-Request-Id",
			loc:   LocationHeader,
			want:  "abc",
		},
		{
			name:    "required header missing",
			set:     func(*MapRequest) {},
			param:   "X-Request-Id",
			loc:     LocationHeader,
			wantErr: `Missing required header parameter "X-Request-Id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewMapRequest()
			tt.set(rc)
			d := op.Param(tt.loc, tt.param)
			require.NotNil(t, d)

			res, err := r.Resolve(ctx, d, rc)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Value)
			stored, ok := rc.Params().Get(tt.loc, tt.param)
			assert.True(t, ok)
			assert.Equal(t, tt.want, stored)
		})
	}
}

func TestResolveAllowEmptyValue(t *testing.T) {
	r := newTestResolver(t)
	d := &Descriptor{
		Name:            "q",
		Location:        LocationQuery,
		AllowEmptyValue: true,
		Schema:          &parser.Schema{Type: parser.TypeString, Types: []parser.SchemaType{parser.TypeString}},
	}

	res, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "q", ""))
	require.NoError(t, err)
	assert.False(t, res.Absent)
	assert.Equal(t, "", res.Value)

	d.AllowEmptyValue = false
	res, err = r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "q", ""))
	require.NoError(t, err)
	assert.True(t, res.Absent)
}

func TestResolveHeaderEnumQuotesValue(t *testing.T) {
	r := newTestResolver(t)
	d := &Descriptor{
		Name:     "X-Mode",
		Location: LocationHeader,
		Schema: &parser.Schema{
			Type:  parser.TypeString,
			Types: []parser.SchemaType{parser.TypeString},
			Enum:  []any{"fast"},
		},
	}

	_, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationHeader, "X-Mode", "slow"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrSchemaValidation)
	assert.Equal(t, `Invalid header parameter "X-Mode": No enum match for: "slow"`, err.Error())
}

func TestResolveEnumKeepsMarkupLiteral(t *testing.T) {
	r := newTestResolver(t)
	d := &Descriptor{
		Name:     "q",
		Location: LocationQuery,
		Schema: &parser.Schema{
			Type:  parser.TypeString,
			Types: []parser.SchemaType{parser.TypeString},
			Enum:  []any{"cats"},
		},
	}

	_, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "q", "cats & dogs <3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `No enum match for: "cats & dogs <3"`)
}

func TestResolveRedactedHeaders(t *testing.T) {
	r := newTestResolver(t, WithRedactedHeaders())
	d := &Descriptor{
		Name:     "X-Api-Key",
		Location: LocationHeader,
		Schema: &parser.Schema{
			Type:  parser.TypeString,
			Types: []parser.SchemaType{parser.TypeString},
			Enum:  []any{"known"},
		},
	}

	_, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationHeader, "X-Api-Key", "s3cret"))
	require.Error(t, err)
	assert.Equal(t, `Invalid header parameter "X-Api-Key": No enum match`, err.Error())

	d.Schema = &parser.Schema{Type: parser.TypeInteger, Types: []parser.SchemaType{parser.TypeInteger}}
	_, err = r.Resolve(context.Background(), d, NewMapRequest().Set(LocationHeader, "X-Api-Key", "s3cret"))
	require.Error(t, err)
	assert.Equal(t, `Invalid header parameter "X-Api-Key": value is not a valid integer`, err.Error())

	q := &Descriptor{Name: "q", Location: LocationQuery, Schema: &parser.Schema{Enum: []any{"known"}}}
	_, err = r.Resolve(context.Background(), q, NewMapRequest().Set(LocationQuery, "q", "other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `No enum match for: "other"`)
}

func TestResolveBodyTypeFromSchemaType(t *testing.T) {
	r := newTestResolver(t)
	d := &Descriptor{Name: "PetData", Location: LocationBody, Schema: &parser.Schema{Type: parser.TypeObject}}

	res, err := r.Resolve(context.Background(), d, NewMapRequest().SetParsedBody([]any{1.0, 2.0}, "application/json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrSchemaValidation)
	assert.Equal(t, StateFailed, res.State)
	assert.Nil(t, res.Value)
}

func TestResolveValidatorFailureIsConfigError(t *testing.T) {
	boom := errors.New("engine exploded")
	r := newTestResolver(t, WithValidator(ValidatorFunc(func(any, *parser.Schema, string) ([]constraint.Violation, error) {
		return nil, boom
	})))

	d := &Descriptor{Name: "q", Location: LocationQuery, Schema: &parser.Schema{}}
	_, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "q", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, oaserrors.ErrResolution)
	assert.Equal(t, 500, oaserrors.HTTPStatus(err))
}

func TestResolveBadPatternIsConfigError(t *testing.T) {
	r := newTestResolver(t)
	d := &Descriptor{
		Name:     "q",
		Location: LocationQuery,
		Schema:   &parser.Schema{Type: parser.TypeString, Types: []parser.SchemaType{parser.TypeString}, Pattern: "(["},
	}
	_, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "q", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
	assert.Equal(t, 500, oaserrors.HTTPStatus(err))
}

func TestResolveLenientFormatWarnings(t *testing.T) {
	r := newTestResolver(t, WithValidator(constraint.New(constraint.WithLenientFormats())))
	d := &Descriptor{
		Name:     "since",
		Location: LocationQuery,
		Schema:   &parser.Schema{Type: parser.TypeString, Types: []parser.SchemaType{parser.TypeString}, Format: "date"},
	}
	res, err := r.Resolve(context.Background(), d, NewMapRequest().Set(LocationQuery, "since", "yesterday"))
	require.NoError(t, err)
	assert.Equal(t, "yesterday", res.Value)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, constraint.SeverityWarning, res.Warnings[0].Severity)
}

func TestResolveAllStopsAtFirstFailure(t *testing.T) {
	r := newTestResolver(t)
	op := mustOperation(t, compileFixture(t, testutil.PetStore20), "findPets")

	rc := NewMapRequest().Set(LocationQuery, "limit", "0")
	results, err := r.ResolveAll(context.Background(), op, rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Invalid query parameter "limit"`)
	// tags resolved (absent) before limit failed; the header was never reached
	require.Len(t, results, 1)
	assert.Equal(t, "tags", results[0].Descriptor.Name)

	rc = NewMapRequest().Set(LocationHeader, "X-Request-Id", "r1")
	results, err = r.ResolveAll(context.Background(), op, rc)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, map[string]any{"query.limit": int64(20), "header.X-Request-Id": "r1"}, rc.Params().Flatten())
}

func TestResolveMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestResolver(t, WithMetrics(NewMetricsWithRegistry(reg)))
	op := mustOperation(t, compileFixture(t, testutil.PetStore20), "findPets")

	_, err := r.ResolveAll(context.Background(), op, NewMapRequest().Set(LocationHeader, "X-Request-Id", "r1"))
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "oasbind_parameter_resolutions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var loc, outcome string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "location":
					loc = l.GetValue()
				case "outcome":
					outcome = l.GetValue()
				}
			}
			counts[loc+"/"+outcome] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"query/absent":    1,
		"query/defaulted": 1,
		"header/resolved": 1,
	}, counts)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil validator", WithValidator(nil)},
		{"nil tracer", WithTracer(nil)},
		{"zero body size", WithMaxBodySize(0)},
		{"nil error handler", WithErrorHandler(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "DefaultResolving", StateDefaultResolving.String())
	assert.Equal(t, "Failed", StateFailed.String())
	assert.Equal(t, "Unknown", State(42).String())
}
