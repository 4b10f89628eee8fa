package server

import "strings"

// RoutePattern compiles a declared path pattern (e.g. "/todos/:id")
// into literal segments and named placeholders, and matches concrete
// request paths against it.
type RoutePattern struct {
	raw      string
	segments []patternSegment
}

type patternSegment struct {
	literal   string
	isParam   bool
	paramName string
}

// CompilePattern parses pattern into a matchable RoutePattern.
func CompilePattern(pattern string) RoutePattern {
	parts := splitPath(pattern)
	segments := make([]patternSegment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, ":") {
			segments = append(segments, patternSegment{isParam: true, paramName: p[1:]})
		} else {
			segments = append(segments, patternSegment{literal: p})
		}
	}
	return RoutePattern{raw: pattern, segments: segments}
}

// splitPath splits path on '/' and drops empty segments. This absorbs
// a leading slash (every declared pattern has one) and also a bare
// trailing slash, matching the original implementation's
// split('/').filter(not empty) behaviour: "/users/123/" matches
// "/users/:id" the same as "/users/123" does. Query strings and
// fragments are not handled here at all; a caller that passes one
// through gets it treated as a literal path segment, which will simply
// fail to match anything sensible.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether path matches the pattern. Segment counts
// must be equal; literal segments compare case-sensitively; each
// placeholder binds to exactly one non-empty segment. The returned map
// contains exactly the placeholder names declared in the pattern.
func (p RoutePattern) Matches(path string) (map[string]string, bool) {
	segments := splitPath(path)
	if len(segments) != len(p.segments) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range p.segments {
		if seg.isParam {
			if segments[i] == "" {
				return nil, false
			}
			params[seg.paramName] = segments[i]
			continue
		}
		if segments[i] != seg.literal {
			return nil, false
		}
	}
	return params, true
}

// String returns the original pattern text.
func (p RoutePattern) String() string { return p.raw }
