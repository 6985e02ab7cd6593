package ast

// Walk traverses an AST depth-first and calls fn for each node.
// If fn returns false, the children of that node are skipped.
func Walk(node Node, fn func(node Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, c := range Children(node) {
		Walk(c, fn)
	}
}

// Children returns the direct children of node in source order. Absent
// optional parts are left out.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if n != nil {
			out = append(out, n)
		}
	}

	switch n := node.(type) {
	case *Query:
		if n.Select != nil {
			add(n.Select)
		}
		if n.From != nil {
			add(n.From)
		}
		if n.Where != nil {
			add(n.Where)
		}
		if n.GroupBy != nil {
			add(n.GroupBy)
		}
		if n.OrderBy != nil {
			add(n.OrderBy)
		}
		if n.OffsetLimit != nil {
			add(n.OffsetLimit)
		}

	case *SelectClause:
		if n.Top != nil {
			add(n.Top)
		}
		add(n.Spec)

	case *TopSpec:
		add(n.Count)

	case *SelectValue:
		add(n.Expr)

	case *SelectList:
		for _, item := range n.Items {
			add(item)
		}

	case *SelectItem:
		add(n.Expr)
		if n.Alias != nil {
			add(n.Alias)
		}

	case *FromClause:
		add(n.Source)

	case *WhereClause:
		add(n.Cond)

	case *GroupByClause:
		for _, e := range n.Exprs {
			add(e)
		}

	case *OrderByClause:
		for _, item := range n.Items {
			add(item)
		}

	case *OrderByItem:
		add(n.Expr)

	case *OffsetLimitClause:
		add(n.Offset)
		add(n.Limit)

	case *AliasedCollection:
		add(n.Source)
		if n.Alias != nil {
			add(n.Alias)
		}

	case *ArrayIteratorCollection:
		add(n.Alias)
		add(n.Source)

	case *JoinCollection:
		add(n.Left)
		add(n.Right)

	case *InputPathCollection:
		add(n.Input)
		add(n.Path)

	case *SubqueryCollection:
		add(n.Query)

	case *IdentifierPath:
		add(n.Parent)
		add(n.Value)

	case *NumberPath:
		add(n.Parent)
		add(n.Value)

	case *StringPath:
		add(n.Parent)
		add(n.Value)

	case *PropertyRef:
		add(n.Member)
		add(n.Name)

	case *MemberIndexer:
		add(n.Member)
		add(n.Index)

	case *FunctionCall:
		add(n.Name)
		for _, a := range n.Args {
			add(a)
		}

	case *Unary:
		add(n.Operand)

	case *Binary:
		add(n.Left)
		add(n.Right)

	case *Coalesce:
		add(n.Left)
		add(n.Right)

	case *Conditional:
		add(n.Cond)
		add(n.Then)
		add(n.Else)

	case *Between:
		add(n.Expr)
		add(n.Low)
		add(n.High)

	case *In:
		add(n.Expr)
		for _, e := range n.List {
			add(e)
		}

	case *Like:
		add(n.Expr)
		add(n.Pattern)
		if n.Escape != nil {
			add(n.Escape)
		}

	case *ArrayCreate:
		for _, e := range n.Items {
			add(e)
		}

	case *ObjectCreate:
		for _, p := range n.Props {
			add(p)
		}

	case *ObjectProperty:
		add(n.Value)

	case *Exists:
		add(n.Query)

	case *ArraySubquery:
		add(n.Query)

	case *Subquery:
		add(n.Query)
	}
	return out
}

// Depth returns the number of nodes on the longest root-to-leaf path below
// node. Counting stops once the depth exceeds limit, so the result is at
// most limit+1 and the cost is bounded for degenerate trees.
func Depth(node Node, limit int) int {
	return depth(node, limit+1)
}

func depth(node Node, budget int) int {
	if node == nil || budget <= 0 {
		return 0
	}
	best := 0
	for _, c := range Children(node) {
		if d := depth(c, budget-1); d > best {
			best = d
			if best+1 >= budget {
				break
			}
		}
	}
	return best + 1
}
