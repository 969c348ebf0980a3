package compiler

import (
	"fmt"
	"strings"
)

// Dump renders an expression tree, one node per line, for diagnostics.
func Dump(e Expr) string {
	var b strings.Builder
	dumpNode(&b, e, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, e Expr, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := e.(type) {
	case nil:
		fmt.Fprintf(b, "%sNull\n", indent)
	case *Literal:
		fmt.Fprintf(b, "%sLiteral len=%d `%s`\n", indent, n.Value.Len(), n.Value)
	case *ScopeRef:
		fmt.Fprintf(b, "%sScope\n", indent)
	case *SetConstructor:
		fmt.Fprintf(b, "%sSet (%d entries)\n", indent, len(n.Entries))
		for _, entry := range n.Entries {
			fmt.Fprintf(b, "%s  Key\n", indent)
			dumpNode(b, entry.Key, depth+2)
			fmt.Fprintf(b, "%s  Value\n", indent)
			dumpNode(b, entry.Value, depth+2)
		}
	case *FunctionConstructor:
		fmt.Fprintf(b, "%sFunction\n", indent)
		fmt.Fprintf(b, "%s  Pattern\n", indent)
		dumpNode(b, n.Pattern, depth+2)
		fmt.Fprintf(b, "%s  Body\n", indent)
		dumpNode(b, n.Body, depth+2)
	case *Combine:
		fmt.Fprintf(b, "%sCombine\n", indent)
		dumpNode(b, n.Left, depth+1)
		dumpNode(b, n.Right, depth+1)
	default:
		fmt.Fprintf(b, "%s<unknown %T>\n", indent, e)
	}
}
