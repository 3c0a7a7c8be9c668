package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in       string
		expected OASVersion
		ok       bool
	}{
		{"2.0", OASVersion20, true},
		{"3.0.0", OASVersion30, true},
		{"3.0.3", OASVersion30, true},
		{"3.1.0", OASVersion31, true},
		{"3.1", OASVersion31, true},
		{"3.2.0", OASVersion32, true},
		{"1.2", Unknown, false},
		{"3.10.0", Unknown, false},
		{"", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ParseVersion(tt.in)
			assert.Equal(t, tt.expected, v)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOASVersionPredicates(t *testing.T) {
	assert.True(t, OASVersion20.IsOAS2())
	assert.False(t, OASVersion20.IsOAS3())
	assert.True(t, OASVersion31.IsOAS3())
	assert.Equal(t, "3.0", OASVersion30.String())
	assert.Equal(t, "unknown", Unknown.String())
}
