package testutil

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// LineParser is a tiny Python subset parser for tests that must run without
// CGO. Each non-empty line is one statement: an optional `target = ` followed
// by a call `dotted.callee(arg, kw=value, **mapping)` or any other expression.
// Nested calls inside arguments are not supported.
type LineParser struct {
	parses atomic.Int64
}

// Parses returns how many files were parsed.
func (p *LineParser) Parses() int64 {
	return p.parses.Load()
}

// Parse builds a pyast tree from src.
func (p *LineParser) Parse(ctx context.Context, path string, src []byte) (*pyast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.parses.Add(1)

	var stmts []*pyast.Node
	for i, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		col := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace)) + 1

		var stmt *pyast.Node
		if target, value, ok := strings.Cut(line, " = "); ok && isDotted(target) {
			stmt = pyast.Assign(target, parseExpr(value))
		} else {
			stmt = pyast.Expr(parseExpr(line))
		}
		stmts = append(stmts, stmt.At(i+1, col))
	}
	return pyast.NewFile(path, pyast.Module(stmts...)), nil
}

func parseExpr(s string) *pyast.Node {
	open := strings.Index(s, "(")
	if open > 0 && strings.HasSuffix(s, ")") && isDotted(s[:open]) {
		inner := strings.TrimSpace(s[open+1 : len(s)-1])
		var args []pyast.Arg
		if inner != "" {
			for _, a := range strings.Split(inner, ",") {
				args = append(args, parseArg(strings.TrimSpace(a)))
			}
		}
		return pyast.Call(pyast.Dotted(s[:open]), args...)
	}
	return parseValue(s)
}

func parseArg(s string) pyast.Arg {
	switch {
	case strings.HasPrefix(s, "**"):
		return pyast.Splat(parseValue(s[2:]))
	case strings.HasPrefix(s, "*"):
		return pyast.Star(parseValue(s[1:]))
	}
	if kw, value, ok := strings.Cut(s, "="); ok && isDotted(kw) && !strings.Contains(kw, ".") {
		return pyast.Kw(kw, parseValue(value))
	}
	return pyast.Positional(parseValue(s))
}

func parseValue(s string) *pyast.Node {
	switch {
	case s == "True" || s == "False" || s == "None":
		return pyast.Lit(s)
	case s != "" && (unicode.IsDigit(rune(s[0])) || s[0] == '"' || s[0] == '\'' || s[0] == '-'):
		return pyast.Lit(s)
	case isDotted(s):
		return pyast.Dotted(s)
	default:
		return pyast.Other(s)
	}
}

func isDotted(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
				return false
			}
		}
	}
	return true
}
