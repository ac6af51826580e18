// Package types defines the core type system for GoDice.
//
// This package contains type definitions for:
//   - Expression: Parsed dice notation expressions
//   - ASTNode: Abstract Syntax Tree nodes with their memo slot
//   - Value: Integer, IntegerList and Roll results
//   - Error types: Structured errors with codes and source positions
package types

// Expression represents a parsed dice notation expression.
//
// An Expression owns its tree. Evaluating it memoizes results inside the
// nodes, so an Expression must not be shared between independent rolls.
type Expression struct {
	ast    *ASTNode
	source string
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast *ASTNode, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
