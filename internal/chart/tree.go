package chart

import (
	"fmt"
	"sort"

	"ledger-service/internal/models"
)

// Node is one account in the chart-of-accounts tree.
type Node struct {
	Account  models.LedgerAccount `json:"account"`
	Children []*Node              `json:"children,omitempty"`
}

// Warning flags a data-integrity problem found while building the tree.
// The offending account is still placed as a root so the chart stays
// renderable, but the condition is surfaced instead of swallowed.
type Warning struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// Tree is the assembled forest plus any integrity warnings.
type Tree struct {
	Roots    []*Node   `json:"roots"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// CycleError is returned when the parent graph contains a cycle.
type CycleError struct {
	AccountID int64
	Code      string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic account hierarchy at account %d (%s)", e.AccountID, e.Code)
}

// BuildTree assembles a flat account list into a forest. First pass
// builds an id->node map, second pass attaches children to parents.
// An account whose parent is missing or is itself becomes a root and
// a Warning is recorded. Roots and children sort by code ascending.
func BuildTree(accounts []models.LedgerAccount) (*Tree, error) {
	nodes := make(map[int64]*Node, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &Node{Account: a}
	}

	tree := &Tree{}
	for _, a := range accounts {
		node := nodes[a.ID]
		switch {
		case a.ParentID == nil:
			tree.Roots = append(tree.Roots, node)
		case *a.ParentID == a.ID:
			tree.Warnings = append(tree.Warnings, Warning{
				AccountID: a.ID,
				Code:      a.Code,
				Reason:    "account is its own parent",
			})
			tree.Roots = append(tree.Roots, node)
		default:
			parent, ok := nodes[*a.ParentID]
			if !ok {
				tree.Warnings = append(tree.Warnings, Warning{
					AccountID: a.ID,
					Code:      a.Code,
					Reason:    fmt.Sprintf("parent account %d does not exist", *a.ParentID),
				})
				tree.Roots = append(tree.Roots, node)
				continue
			}
			parent.Children = append(parent.Children, node)
		}
	}

	sortNodes(tree.Roots)
	for _, n := range nodes {
		sortNodes(n.Children)
	}

	if err := detectCycle(tree.Roots, nodes); err != nil {
		return nil, err
	}
	return tree, nil
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Account.Code < nodes[j].Account.Code
	})
}

// detectCycle walks the forest depth-first. Every node must be reached
// exactly once from the roots; a revisit, or a node unreachable from
// any root, means the parent graph loops.
func detectCycle(roots []*Node, nodes map[int64]*Node) error {
	visited := make(map[int64]bool, len(nodes))

	var walk func(n *Node) error
	walk = func(n *Node) error {
		if visited[n.Account.ID] {
			return &CycleError{AccountID: n.Account.ID, Code: n.Account.Code}
		}
		visited[n.Account.ID] = true
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}

	// Nodes not reachable from any root can only sit on a cycle of
	// existing parents (a->b->a) that produced no root at all.
	for id, n := range nodes {
		if !visited[id] {
			return &CycleError{AccountID: id, Code: n.Account.Code}
		}
	}
	return nil
}
