package policyopa

import "github.com/open-policy-agent/opa/ast"

// allowedBuiltins keeps binding policies pure: no http.send, no time, no
// randomness, no io.
var allowedBuiltins = map[string]struct{}{
	"and":               {},
	"concat":            {},
	"contains":          {},
	"count":             {},
	"endswith":          {},
	"eq":                {},
	"equal":             {},
	"gt":                {},
	"gte":               {},
	"internal.member_2": {},
	"internal.member_3": {},
	"lower":             {},
	"lt":                {},
	"lte":               {},
	"neq":               {},
	"object.get":        {},
	"or":                {},
	"sprintf":           {},
	"startswith":        {},
	"trim":              {},
	"upper":             {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	allowed := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if _, ok := allowedBuiltins[builtin.Name]; !ok {
			continue
		}
		allowed = append(allowed, builtin)
	}
	return allowed
}
