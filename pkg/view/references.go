package view

import (
	"slices"
	"text/template/parse"
)

// References lists the template names passed as string literals to
// include, and the block names passed to contentFor, across t and its
// {{define}} blocks. Dynamic arguments are not reported.
func (t *Template) References() (includes, blocks []string) {
	for _, sub := range t.tmpl.Templates() {
		if sub.Tree == nil || sub.Tree.Root == nil {
			continue
		}
		walk(sub.Tree.Root, func(cmd *parse.CommandNode) {
			fn, args := literalCall(cmd)
			switch fn {
			case "include":
				if len(args) > 0 {
					includes = append(includes, args[0])
				}
			case "contentFor":
				switch len(args) {
				case 1:
					blocks = append(blocks, args[0])
				case 2:
					blocks = append(blocks, args[1])
				}
			}
		})
	}
	slices.Sort(includes)
	slices.Sort(blocks)
	return slices.Compact(includes), slices.Compact(blocks)
}

// Defines reports whether t has a {{define}} block called name.
func (t *Template) Defines(name string) bool {
	return t.tmpl.Lookup(name) != nil
}

// literalCall returns the function name of cmd and its leading string
// literal arguments.
func literalCall(cmd *parse.CommandNode) (string, []string) {
	if len(cmd.Args) == 0 {
		return "", nil
	}
	id, ok := cmd.Args[0].(*parse.IdentifierNode)
	if !ok {
		return "", nil
	}
	var args []string
	for _, a := range cmd.Args[1:] {
		s, ok := a.(*parse.StringNode)
		if !ok {
			break
		}
		args = append(args, s.Text)
	}
	return id.Ident, args
}

func walk(n parse.Node, visit func(*parse.CommandNode)) {
	switch x := n.(type) {
	case *parse.ListNode:
		if x == nil {
			return
		}
		for _, c := range x.Nodes {
			walk(c, visit)
		}
	case *parse.ActionNode:
		walk(x.Pipe, visit)
	case *parse.PipeNode:
		if x == nil {
			return
		}
		for _, c := range x.Cmds {
			walk(c, visit)
		}
	case *parse.CommandNode:
		visit(x)
		for _, a := range x.Args {
			walk(a, visit)
		}
	case *parse.IfNode:
		walkBranch(&x.BranchNode, visit)
	case *parse.RangeNode:
		walkBranch(&x.BranchNode, visit)
	case *parse.WithNode:
		walkBranch(&x.BranchNode, visit)
	case *parse.TemplateNode:
		walk(x.Pipe, visit)
	}
}

func walkBranch(b *parse.BranchNode, visit func(*parse.CommandNode)) {
	walk(b.Pipe, visit)
	walk(b.List, visit)
	walk(b.ElseList, visit)
}
