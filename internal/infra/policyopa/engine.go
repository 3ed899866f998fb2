package policyopa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"revix/internal/domain"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

const DefaultQuery = "data.revix.binding.result"

// Input is the document a binding policy sees as input.
type Input struct {
	Kind           string            `json:"kind"`
	Identity       IdentityInput     `json:"identity"`
	Claim          map[string]string `json:"claim"`
	BoundAddresses []string          `json:"bound_addresses"`
}

type IdentityInput struct {
	Provider          string `json:"provider"`
	ExternalAccountID string `json:"external_account_id"`
	DisplayName       string `json:"display_name,omitempty"`
	Handle            string `json:"handle,omitempty"`
}

type Result struct {
	Allow bool                      `json:"allow"`
	Deny  []domain.BindingViolation `json:"deny"`
}

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngineFromPath compiles every .rego file under path, which may be a
// file or a directory.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("BINDING_POLICY_PATH is required")
	}
	return newEngine(ctx, rego.Load([]string{path}, nil))
}

// NewEngineFromModule compiles a single in-memory module.
func NewEngineFromModule(ctx context.Context, filename, module string) (*Engine, error) {
	return newEngine(ctx, rego.Module(filename, module))
}

func newEngine(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	capabilities := ast.CapabilitiesForThisVersion()
	capabilities.Builtins = filterBuiltins(capabilities.Builtins)
	compiler := ast.NewCompiler().WithCapabilities(capabilities)

	r := rego.New(
		rego.Query(DefaultQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile binding policy: %w", err)
	}
	if err := assertNoForbiddenBuiltins(compiler); err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input Input) (Result, error) {
	if e == nil {
		return Result{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Result{}, errors.New("empty policy result")
	}
	payload, err := json.Marshal(results[0].Expressions[0].Value)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("decode policy result: %w", err)
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
	return result, nil
}

func assertNoForbiddenBuiltins(compiler *ast.Compiler) error {
	forbidden := make(map[string]struct{})
	for _, module := range compiler.Modules {
		ast.WalkTerms(module, func(term *ast.Term) bool {
			call, ok := term.Value.(ast.Call)
			if !ok || len(call) == 0 || call[0] == nil {
				return false
			}
			name := call[0].Value.String()
			if _, ok := ast.BuiltinMap[name]; !ok {
				return false
			}
			if _, ok := allowedBuiltins[name]; ok {
				return false
			}
			forbidden[name] = struct{}{}
			return false
		})
	}
	if len(forbidden) == 0 {
		return nil
	}
	names := make([]string, 0, len(forbidden))
	for name := range forbidden {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("forbidden builtins: %s", strings.Join(names, ", "))
}
