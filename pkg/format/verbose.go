// Package format renders evaluated dice expressions for humans.
//
// Verbose prints the tree one operator per line, each followed by the value
// it produced:
//
//	Highest(
//	  roll 4d6 -> [6, 3, 5, 2],
//	  3
//	) -> [5, 6, 3]
package format

import (
	"strings"

	"github.com/sandrolain/godice/pkg/types"
)

// Indent is the number of spaces added per nesting level.
const Indent = 2

type line struct {
	depth int
	text  string
}

// Verbose renders the evaluation breakdown of node. Nodes are expected to
// hold a memoized result; those that do not print "?" in its place.
func Verbose(node *types.ASTNode) string {
	lines := element(node, 0)

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(" ", Indent*l.depth))
		b.WriteString(l.text)
	}
	return b.String()
}

func element(node *types.ASTNode, depth int) []line {
	switch {
	case node.Type.IsOperator():
		return operator(node, depth)
	case node.Type.IsRandom():
		for _, o := range node.Operands {
			if !o.IsLiteral() {
				return operator(node, depth)
			}
		}
		return []line{{depth, "roll " + node.String() + " -> " + result(node)}}
	}
	return []line{{depth, node.String()}}
}

// operator renders "Name(" and its operands. A lone single-line operand
// stays on the opening line.
func operator(node *types.ASTNode, depth int) []line {
	lines := []line{{depth, node.Type.Name() + "("}}
	n := len(node.Operands)
	for i, o := range node.Operands {
		sub := element(o, depth+1)
		if len(sub) > 1 || n > 1 {
			if i+1 < n {
				sub[len(sub)-1].text += ","
			}
			lines = append(lines, sub...)
			continue
		}
		lines[len(lines)-1].text += sub[0].text
	}

	closing := ") -> " + result(node)
	last := len(lines) - 1
	if n > 1 || last > 0 && lines[last].depth < lines[last-1].depth {
		return append(lines, line{depth, closing})
	}
	lines[last].text += closing
	return lines
}

func result(node *types.ASTNode) string {
	v, ok := node.Result()
	if !ok {
		return "?"
	}
	return v.String()
}
