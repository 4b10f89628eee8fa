package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutePatternMatches(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		path       string
		wantParams map[string]string
		wantMatch  bool
	}{
		{name: "literal match", pattern: "/hello", path: "/hello", wantParams: map[string]string{}, wantMatch: true},
		{name: "literal mismatch", pattern: "/hello", path: "/goodbye", wantMatch: false},
		{name: "single placeholder", pattern: "/todos/:id", path: "/todos/42", wantParams: map[string]string{"id": "42"}, wantMatch: true},
		{name: "placeholder cannot be empty", pattern: "/todos/:id", path: "/todos/", wantMatch: false},
		{name: "segment count mismatch", pattern: "/a/b/c", path: "/a/b", wantMatch: false},
		{name: "case sensitive literal", pattern: "/Todos", path: "/todos", wantMatch: false},
		{name: "trailing slash is absorbed", pattern: "/todos/:id", path: "/todos/42/", wantParams: map[string]string{"id": "42"}, wantMatch: true},
		{name: "multiple placeholders", pattern: "/a/:x/b/:y", path: "/a/1/b/2", wantParams: map[string]string{"x": "1", "y": "2"}, wantMatch: true},
		{name: "query string not stripped", pattern: "/hello", path: "/hello?x=1", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CompilePattern(tt.pattern)
			params, ok := p.Matches(tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantParams, params)
			}
		})
	}
}

func TestRoutePatternString(t *testing.T) {
	p := CompilePattern("/todos/:id")
	assert.Equal(t, "/todos/:id", p.String())
}
