package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
)

// TreeFormatter renders requirement plans as trees. Composite requirements
// (or-groups, conditionals, inventory setups, shop demands) become branches.
type TreeFormatter struct {
	useColors bool
	// env, when set, lets the formatter show whether each node already holds
	env *requirement.Environment
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool, env *requirement.Environment) *TreeFormatter {
	return &TreeFormatter{useColors: useColors, env: env}
}

type treeNode struct {
	label    string
	req      requirement.Requirement
	children []treeNode
}

// FormatTree renders a titled forest of requirements
func (f *TreeFormatter) FormatTree(ctx context.Context, title string, reqs []requirement.Requirement) string {
	var builder strings.Builder
	builder.WriteString(title + "\n")
	if len(reqs) == 0 {
		builder.WriteString("└── (none)\n")
		return builder.String()
	}
	for i, r := range reqs {
		f.formatNode(ctx, &builder, f.node(r), "", i == len(reqs)-1)
	}
	return builder.String()
}

func (f *TreeFormatter) node(r requirement.Requirement) treeNode {
	n := treeNode{label: r.Description(), req: r}
	switch v := r.(type) {
	case *requirement.LogicalRequirement:
		for _, c := range v.Children() {
			n.children = append(n.children, f.node(c))
		}
	case *requirement.ConditionalRequirement:
		for _, s := range v.Steps() {
			child := f.node(s.Then)
			child.label = fmt.Sprintf("when %s: %s", stepName(s), child.label)
			n.children = append(n.children, child)
		}
	case *requirement.InventorySetupRequirement:
		for _, it := range v.Items() {
			n.children = append(n.children, f.node(it))
		}
	case *requirement.ShopRequirement:
		for _, d := range v.Demands() {
			n.children = append(n.children, treeNode{label: d.String()})
		}
	}
	return n
}

func stepName(s requirement.Step) string {
	if s.Name == "" {
		return "always"
	}
	return s.Name
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(ctx context.Context, builder *strings.Builder, node treeNode, prefix string, isLast bool) {
	linePrefix := prefix + "├── "
	childPrefix := prefix + "│   "
	if isLast {
		linePrefix = prefix + "└── "
		childPrefix = prefix + "    "
	}

	tag := ""
	if node.req != nil {
		tag = fmt.Sprintf(" [%s%s%s %s]", f.kindColor(node.req.Kind()), node.req.Kind(), f.colorReset(), node.req.Priority())
	}

	builder.WriteString(fmt.Sprintf("%s%s%s%s\n", linePrefix, f.statusIcon(ctx, node), node.label, tag))

	for i, child := range node.children {
		f.formatNode(ctx, builder, child, childPrefix, i == len(node.children)-1)
	}
}

// statusIcon reports whether the node's requirement already holds
func (f *TreeFormatter) statusIcon(ctx context.Context, node treeNode) string {
	if f.env == nil || node.req == nil {
		return ""
	}
	if node.req.IsFulfilled(ctx, f.env) {
		return "[✓] "
	}
	return "[ ] "
}

// kindColor returns ANSI color code for a requirement kind
func (f *TreeFormatter) kindColor(kind requirement.Kind) string {
	if !f.useColors {
		return ""
	}

	switch kind {
	case requirement.KindShop:
		return "\033[32m" // Green
	case requirement.KindOr, requirement.KindConditional:
		return "\033[33m" // Yellow
	case requirement.KindItem, requirement.KindInventorySetup:
		return "\033[36m" // Cyan
	default:
		return ""
	}
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}
