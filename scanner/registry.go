// Package scanner builds the per-node-kind [matcher.Pattern]s that turn a syntax tree into a
// formatting token stream, and the [Registry] that dispatches a node to its scanner by kind.
package scanner

import (
	"fmt"

	"github.com/bracefmt/bracefmt/ast"
	"github.com/bracefmt/bracefmt/ir"
)

// Registry maps a node kind to the pattern that scans nodes of that kind.
type Registry struct {
	patterns map[ast.Kind]matcherPattern
}

// matcherPattern is the subset of *matcher.Pattern the registry needs; kept as an interface here
// so this file doesn't have to import matcher just to spell the type twice.
type matcherPattern interface {
	Match(nodes []ast.Node) ([]ir.Token, error)
}

// NewRegistry builds the registry with every concrete scanner wired to its node kind.
func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[ast.Kind]matcherPattern)}
	r.register(ast.KindFile, filePattern(r))
	r.register(ast.KindPackageDirective, packageDirectivePattern(r))
	r.register(ast.KindImportDirective, importDirectivePattern(r))
	r.register(ast.KindClassDeclaration, classDeclarationPattern(r))
	r.register(ast.KindObjectDeclaration, classDeclarationPattern(r))
	r.register(ast.KindInterfaceDeclaration, classDeclarationPattern(r))
	r.register(ast.KindFunctionDeclaration, functionDeclarationPattern(r))
	r.register(ast.KindPropertyDeclaration, propertyDeclarationPattern(r))
	r.register(ast.KindParameterList, parameterListPattern(r))
	r.register(ast.KindParameter, parameterPattern(r))
	r.register(ast.KindBlock, blockPattern(r))
	r.register(ast.KindIfExpression, ifExpressionPattern(r))
	r.register(ast.KindBinaryExpression, binaryExpressionPattern(r))
	r.register(ast.KindCallExpression, callExpressionPattern(r))
	r.register(ast.KindValueArgumentList, valueArgumentListPattern(r))
	r.register(ast.KindValueArgument, valueArgumentPattern(r))
	r.register(ast.KindDotQualifiedExpression, dotQualifiedExpressionPattern(r))
	r.register(ast.KindSafeDotQualifiedExpression, dotQualifiedExpressionPattern(r))
	r.register(ast.KindStringLiteral, stringLiteralPattern(r))
	return r
}

func (r *Registry) register(k ast.Kind, p matcherPattern) {
	r.patterns[k] = p
}

// Scan dispatches node to its registered scanner and returns the tokens it produces. A node kind
// with no registered scanner is a programming error, since every kind a TreeProvider can produce
// must have been wired here; NoScannerError makes that failure mode explicit rather than emitting
// a wrong-but-plausible token stream.
func (r *Registry) Scan(node ast.Node) ([]ir.Token, error) {
	p, ok := r.patterns[node.Kind()]
	if !ok {
		return nil, &NoScannerError{Kind: node.Kind()}
	}
	return p.Match(node.Children())
}

// NoScannerError reports a node kind with no registered scanner.
type NoScannerError struct {
	Kind ast.Kind
}

func (e *NoScannerError) Error() string {
	return fmt.Sprintf("no scanner registered for node kind %s", e.Kind)
}
