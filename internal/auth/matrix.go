package auth

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gymcore/gym-gateway/internal/domain"
)

// MethodAny matches every HTTP method.
const MethodAny = "ANY"

// CatchAllPattern matches every path.
const CatchAllPattern = "/**"

// ErrUnreachableRule is returned when a rule follows a catch-all and could
// never match.
var ErrUnreachableRule = errors.New("rule is unreachable after catch-all")

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Rule grants access to requests matching Method and Pattern.
//
// Patterns are slash separated. A segment of "*" or "{name}" matches exactly
// one segment; a trailing "/**" matches the prefix itself and anything below.
type Rule struct {
	Method  string
	Pattern string
	Roles   []domain.Role
	Public  bool
}

// Permits reports whether role may pass this rule.
func (r Rule) Permits(role domain.Role) bool {
	if r.Public {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	return r.Method + " " + r.Pattern
}

func (r Rule) isCatchAll() bool {
	return r.Method == MethodAny && r.Pattern == CatchAllPattern
}

// Permit builds a rule for the given roles.
func Permit(method, pattern string, roles ...domain.Role) Rule {
	return Rule{Method: method, Pattern: pattern, Roles: roles}
}

// PermitAll builds a rule that needs no identity.
func PermitAll(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Public: true}
}

type compiledRule struct {
	Rule
	glob string
}

// Matrix evaluates an ordered rule list, first match wins. It is immutable
// after construction and safe for concurrent use.
type Matrix struct {
	rules []compiledRule
}

var templateSegment = regexp.MustCompile(`\{[^/{}]+\}`)

// NewMatrix validates and compiles rules. Rules placed after a catch-all are
// rejected rather than silently ignored.
func NewMatrix(rules []Rule) (*Matrix, error) {
	compiled := make([]compiledRule, 0, len(rules))
	catchAll := -1
	for i, rule := range rules {
		rule.Method = strings.ToUpper(strings.TrimSpace(rule.Method))
		if rule.Method == "" {
			rule.Method = MethodAny
		}
		if !validMethod(rule.Method) {
			return nil, fmt.Errorf("rule %d (%s): unsupported method", i, rule)
		}
		if !strings.HasPrefix(rule.Pattern, "/") {
			return nil, fmt.Errorf("rule %d (%s): pattern must start with /", i, rule)
		}
		if !rule.Public && len(rule.Roles) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no roles granted", i, rule)
		}
		for _, role := range rule.Roles {
			if !role.Valid() {
				return nil, fmt.Errorf("rule %d (%s): unknown role %q", i, rule, role)
			}
		}
		if catchAll >= 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) follows catch-all rule %d", ErrUnreachableRule, i, rule, catchAll)
		}

		glob := templateSegment.ReplaceAllString(rule.Pattern, "*")
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("rule %d (%s): invalid pattern", i, rule)
		}
		if rule.isCatchAll() {
			catchAll = i
		}
		compiled = append(compiled, compiledRule{Rule: rule, glob: glob})
	}
	return &Matrix{rules: compiled}, nil
}

// Match returns the first rule matching the request.
func (m *Matrix) Match(method, requestPath string) (Rule, bool) {
	method = strings.ToUpper(method)
	p := cleanPath(requestPath)
	for _, rule := range m.rules {
		if rule.Method != MethodAny && rule.Method != method {
			continue
		}
		if matchGlob(rule.glob, p) {
			return rule.Rule, true
		}
	}
	return Rule{}, false
}

// Authorize decides whether a caller with role may perform the request.
// An empty role stands for an anonymous caller. Unmatched requests are denied.
func (m *Matrix) Authorize(method, requestPath string, role domain.Role) Decision {
	rule, ok := m.Match(method, requestPath)
	if !ok {
		return Deny
	}
	if rule.Permits(role) {
		return Allow
	}
	return Deny
}

// Rules returns a copy of the configured rules in evaluation order.
func (m *Matrix) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.Rule
	}
	return out
}

// matchGlob lets a trailing "/**" also match its bare prefix, so
// "/oauth2/**" covers "/oauth2".
func matchGlob(glob, p string) bool {
	if prefix, ok := strings.CutSuffix(glob, "/**"); ok {
		if prefix == "" {
			return true
		}
		if matched, _ := doublestar.Match(prefix, p); matched {
			return true
		}
	}
	matched, _ := doublestar.Match(glob, p)
	return matched
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func validMethod(method string) bool {
	switch method {
	case MethodAny, http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}
