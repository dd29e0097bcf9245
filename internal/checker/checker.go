package checker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/config"
	"github.com/funvibe/flowtype/internal/diagnostics"
	"github.com/funvibe/flowtype/internal/env"
	"github.com/funvibe/flowtype/internal/metrics"
	"github.com/funvibe/flowtype/internal/props"
	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/typesystem"
)

// Checker performs one flow-typing walk. It is not safe for concurrent use;
// create one Checker per unit.
type Checker struct {
	alg     *typesystem.Algebra
	globals map[string]FnSig
	diags   *diagnostics.Set
	file    string
	walkID  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Options configures a Checker. Zero values are usable.
type Options struct {
	File    string
	Globals map[string]FnSig // Added to (and overriding) the base environment
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// New creates a Checker over the given type algebra.
func New(alg *typesystem.Algebra, opts Options) *Checker {
	globals := BaseGlobals()
	for name, sig := range opts.Globals {
		globals[name] = sig
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	walkID := uuid.NewString()
	if config.IsTestMode {
		walkID = "test"
	}
	return &Checker{
		alg:     alg,
		globals: globals,
		diags:   &diagnostics.Set{},
		file:    opts.File,
		walkID:  walkID,
		logger:  logger.With("walk", walkID),
		metrics: opts.Metrics,
	}
}

// WalkID identifies this walk in logs.
func (c *Checker) WalkID() string { return c.walkID }

// Diagnostics returns the soft errors reported so far, sorted by position.
func (c *Checker) Diagnostics() []*diagnostics.DiagnosticError {
	return c.diags.Sorted()
}

// Declare adds a function signature visible to subsequent checks.
func (c *Checker) Declare(name string, sig FnSig) {
	c.globals[name] = sig
}

// CheckUnit checks a unit's expression under its initial environment and
// returns an annotated copy of the unit.
func (c *Checker) CheckUnit(u *ast.Unit) (*ast.Unit, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveUnit(time.Since(start)) }()

	for _, g := range u.Globals {
		sig, err := SigFromDecl(g)
		if err != nil {
			c.report(diagnostics.ErrP001, g.Token, "%v", err)
			continue
		}
		c.Declare(g.Name, sig)
	}

	e := env.New()
	for _, p := range u.Env {
		e = e.Extend(p.Name, p.Type, props.Empty)
	}

	c.logger.Debug("checking unit", "unit", u.Name, "bindings", e.Len())
	expr, err := c.Check(Context{Env: e}, u.Expr, nil)
	if err != nil {
		return nil, fmt.Errorf("unit %s: %w", u.Name, err)
	}
	out := *u
	out.Expr = expr
	return &out, nil
}

func (c *Checker) report(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	d := diagnostics.NewErrorf(code, tok, format, args...)
	d.File = c.file
	c.diags.Add(d)
	c.metrics.Diagnostic(string(code))
	c.logger.Debug("diagnostic", "code", code, "pos", tok.Pos(), "msg", d.Message)
}
