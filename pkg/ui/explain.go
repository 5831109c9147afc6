package ui

import (
	"strings"

	"rowexec/pkg/iterator"
)

const treeRunes = " │├└─"

// Explain renders plan and its inputs as an indented tree, one operator per
// line, using each operator's String form.
func Explain(plan iterator.PhysicalPlan) string {
	if plan == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(plan.String())
	explainChildren(&b, plan, "")
	return b.String()
}

func explainChildren(b *strings.Builder, plan iterator.PhysicalPlan, indent string) {
	children := plan.Children()
	for i, child := range children {
		if child == nil {
			continue
		}
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		b.WriteString("\n")
		b.WriteString(indent + branch + child.String())
		explainChildren(b, child, indent+next)
	}
}
