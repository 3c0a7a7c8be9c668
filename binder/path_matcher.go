package binder

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// PathMatcher matches concrete request paths against one path template
// such as "/pets/{PetName}".
type PathMatcher struct {
	template   string
	regex      *regexp.Regexp
	paramNames []string

	// literal counts non-slash literal characters; segments counts
	// template parameters. Both order matchers from most to least specific.
	literal  int
	segments int
}

// NewPathMatcher compiles a path template. Templates with unclosed, empty
// or duplicate parameters are rejected.
func NewPathMatcher(template string) (*PathMatcher, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("binder: path template %q must start with /", template)
	}

	var (
		pattern strings.Builder
		names   []string
		seen    = make(map[string]bool)
		literal int
	)
	pattern.WriteString("^")

	rest := template
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			pattern.WriteString(regexp.QuoteMeta(rest))
			literal += len(strings.ReplaceAll(rest, "/", ""))
			break
		}

		lit := rest[:open]
		pattern.WriteString(regexp.QuoteMeta(lit))
		literal += len(strings.ReplaceAll(lit, "/", ""))

		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("binder: unclosed parameter in path template %q", template)
		}
		name := rest[open+1 : open+end]
		if name == "" {
			return nil, fmt.Errorf("binder: empty parameter in path template %q", template)
		}
		if seen[name] {
			return nil, fmt.Errorf("binder: duplicate parameter %q in path template %q", name, template)
		}
		seen[name] = true
		names = append(names, name)
		pattern.WriteString("([^/]+)")

		rest = rest[open+end+1:]
	}
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("binder: compiling path template %q: %w", template, err)
	}

	return &PathMatcher{
		template:   template,
		regex:      re,
		paramNames: names,
		literal:    literal,
		segments:   len(names),
	}, nil
}

// Match reports whether path matches the template and returns the
// unescaped parameter values.
func (pm *PathMatcher) Match(path string) (map[string]string, bool) {
	groups := pm.regex.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string, len(pm.paramNames))
	for i, name := range pm.paramNames {
		value, err := url.PathUnescape(groups[i+1])
		if err != nil {
			value = groups[i+1]
		}
		params[name] = value
	}
	return params, true
}

// Template returns the path template.
func (pm *PathMatcher) Template() string {
	return pm.template
}

// ParamNames returns the template's parameter names in order.
func (pm *PathMatcher) ParamNames() []string {
	return pm.paramNames
}

// PathMatcherSet holds matchers ordered so that literal paths win over
// templated ones: /pets/mine is tried before /pets/{PetName}.
type PathMatcherSet struct {
	matchers []*PathMatcher
}

// NewPathMatcherSet compiles every template.
func NewPathMatcherSet(templates []string) (*PathMatcherSet, error) {
	matchers := make([]*PathMatcher, 0, len(templates))
	for _, tmpl := range templates {
		m, err := NewPathMatcher(tmpl)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	sort.SliceStable(matchers, func(i, j int) bool {
		a, b := matchers[i], matchers[j]
		if a.segments != b.segments {
			return a.segments < b.segments
		}
		if a.literal != b.literal {
			return a.literal > b.literal
		}
		return a.template < b.template
	})
	return &PathMatcherSet{matchers: matchers}, nil
}

// Match returns every template that matches path, most specific first.
func (s *PathMatcherSet) Match(path string) []PathMatch {
	var out []PathMatch
	for _, m := range s.matchers {
		if params, ok := m.Match(path); ok {
			out = append(out, PathMatch{Template: m.template, Params: params})
		}
	}
	return out
}

// Templates returns the templates in match order.
func (s *PathMatcherSet) Templates() []string {
	out := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		out[i] = m.template
	}
	return out
}

// PathMatch is one template matched by a request path.
type PathMatch struct {
	Template string
	Params   map[string]string
}
