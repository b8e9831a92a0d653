package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mgomes/filtrex/filtrex"
	"github.com/spf13/cobra"
)

func newASTCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ast EXPR",
		Short: "Print the parse tree of an expression",
		Example: `  filtrex ast 'a < 2 and f(x)'
  filtrex --format json ast -- '-x'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.engine.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse failed: %w", err)
			}
			if a.cfg.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), treeNode(root))
			}
			return writeTree(cmd.OutOrStdout(), root, 0)
		},
	}
}

type astNode struct {
	Type     string     `json:"type"`
	Label    string     `json:"label,omitempty"`
	Pos      string     `json:"pos"`
	Children []*astNode `json:"children,omitempty"`
}

func treeNode(n filtrex.Node) *astNode {
	out := &astNode{Pos: fmt.Sprintf("%d:%d", n.Pos().Line, n.Pos().Column)}
	var children []filtrex.Node

	switch n := n.(type) {
	case *filtrex.NumberLit:
		out.Type, out.Label = "number", n.Raw
	case *filtrex.StringLit:
		out.Type, out.Label = "string", n.String()
	case *filtrex.SymbolRef:
		out.Type, out.Label = "symbol", n.String()
	case *filtrex.OfExpr:
		out.Type, out.Label = "of", n.Name
		children = []filtrex.Node{n.Object}
	case *filtrex.CallExpr:
		out.Type, out.Label = "call", n.Name
		children = n.Args
	case *filtrex.ListExpr:
		out.Type = "list"
		children = n.Elements
	case *filtrex.UnaryExpr:
		out.Type, out.Label = "unary", n.Operator
		children = []filtrex.Node{n.Right}
	case *filtrex.BinaryExpr:
		out.Type, out.Label = "binary", n.Operator
		children = []filtrex.Node{n.Left, n.Right}
	case *filtrex.LogicalExpr:
		out.Type, out.Label = "logical", n.Operator
		children = []filtrex.Node{n.Left, n.Right}
	case *filtrex.MembershipExpr:
		out.Type, out.Label = "membership", "in"
		if n.Negated {
			out.Label = "not in"
		}
		children = []filtrex.Node{n.Left, n.Right}
	case *filtrex.RelationExpr:
		out.Type, out.Label = "relation", strings.Join(n.Operators, " ")
		children = n.Operands
	case *filtrex.IfExpr:
		out.Type = "if"
		children = []filtrex.Node{n.Condition, n.Consequent, n.Alternate}
	default:
		out.Type = fmt.Sprintf("%T", n)
	}

	for _, child := range children {
		out.Children = append(out.Children, treeNode(child))
	}
	return out
}

func writeTree(w io.Writer, root filtrex.Node, depth int) error {
	return writeASTNode(w, treeNode(root), depth)
}

func writeASTNode(w io.Writer, n *astNode, depth int) error {
	line := strings.Repeat("  ", depth) + n.Type
	if n.Label != "" {
		line += " " + n.Label
	}
	if _, err := fmt.Fprintf(w, "%s  @%s\n", line, n.Pos); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := writeASTNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
