package manifest

import (
	"fmt"
	"net/url"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate is a compiled accept expression.
type Predicate struct {
	source  string
	program *vm.Program
}

// urlEnv is the environment accept expressions are evaluated in.
func urlEnv(u *url.URL) map[string]any {
	env := map[string]any{
		"scheme":   "",
		"host":     "",
		"hostname": "",
		"port":     "",
		"path":     "",
		"user":     "",
		"query":    map[string]string{},
	}
	if u == nil {
		return env
	}
	query := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	env["scheme"] = u.Scheme
	env["host"] = u.Host
	env["hostname"] = u.Hostname()
	env["port"] = u.Port()
	env["path"] = u.Path
	env["user"] = u.User.Username()
	env["query"] = query
	return env
}

// CompilePredicate compiles an accept expression. The expression must yield
// a bool.
func CompilePredicate(source string) (*Predicate, error) {
	program, err := expr.Compile(source, expr.Env(urlEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid accept expression %q: %w", source, err)
	}
	return &Predicate{source: source, program: program}, nil
}

// String returns the expression source.
func (p *Predicate) String() string {
	return p.source
}

// Match evaluates the predicate against u.
func (p *Predicate) Match(u *url.URL) (bool, error) {
	out, err := expr.Run(p.program, urlEnv(u))
	if err != nil {
		return false, fmt.Errorf("evaluate accept expression %q: %w", p.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("accept expression %q returned %T, not bool", p.source, out)
	}
	return ok, nil
}
