package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vvka-141/transient/pkg/transient"
)

// exprEnv is the set of facts about an error visible to expressions.
type exprEnv struct {
	Message   string `expr:"message"`
	Code      string `expr:"code"`
	Timeout   bool   `expr:"timeout"`
	Temporary bool   `expr:"temporary"`
	Canceled  bool   `expr:"canceled"`
}

// Expr classifies errors with a boolean expression, for example
//
//	code startsWith "08" || timeout || message contains "try again"
//
// The variables are message (lowercased error text), code (from the optional
// CodeFunc), timeout, temporary and canceled.
type Expr struct {
	source  string
	program *vm.Program
	code    CodeFunc
}

// NewExpr compiles expression. code may be nil, in which case code is always empty.
func NewExpr(expression string, code CodeFunc) (*Expr, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: empty classifier expression", transient.ErrInvalidArgument)
	}
	program, err := expr.Compile(expression, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: classifier expression %q: %v", transient.ErrInvalidArgument, expression, err)
	}
	return &Expr{source: expression, program: program, code: code}, nil
}

// String returns the expression source.
func (c *Expr) String() string {
	return c.source
}

// IsTransient evaluates the expression for err. Evaluation errors count as permanent.
func (c *Expr) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	out, runErr := expr.Run(c.program, c.facts(err))
	if runErr != nil {
		return false
	}
	result, _ := out.(bool)
	return result
}

func (c *Expr) facts(err error) exprEnv {
	env := exprEnv{
		Message:  strings.ToLower(err.Error()),
		Canceled: errors.Is(err, context.Canceled),
	}
	if c.code != nil {
		env.Code, _ = c.code(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		env.Timeout = true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		env.Timeout = true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		env.Temporary = true
	}
	return env
}

// PostgresCode is a CodeFunc returning the SQLSTATE of a pgx error.
func PostgresCode(err error) (string, bool) {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState(), true
	}
	return "", false
}
