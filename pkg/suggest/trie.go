package suggest

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// edge links a parent to the child reached by consuming r.
type edge struct {
	r    rune
	node *Node
}

// Node is one character position shared by every term with that prefix.
// children is kept sorted by rune, so walks over a given tree shape always
// visit siblings in the same order.
type Node struct {
	children []edge
	terminal bool
	term     string
}

func (n *Node) child(r rune) *Node {
	i, ok := slices.BinarySearchFunc(n.children, r, func(e edge, r rune) int {
		return int(e.r) - int(r)
	})
	if !ok {
		return nil
	}
	return n.children[i].node
}

func (n *Node) childOrCreate(r rune) (*Node, bool) {
	i, ok := slices.BinarySearchFunc(n.children, r, func(e edge, r rune) int {
		return int(e.r) - int(r)
	})
	if ok {
		return n.children[i].node, false
	}
	c := &Node{}
	n.children = slices.Insert(n.children, i, edge{r: r, node: c})
	return c, true
}

// Index is the character trie holding the vocabulary.
// It is built single-threaded and becomes read-only once sealed.
type Index struct {
	root     *Node
	prebuilt bool
	sealed   bool
	terms    int
	nodes    int
}

// NewIndex creates an empty index. With prebuilt set, every terminal node
// keeps its full term so enumeration skips path reconstruction.
func NewIndex(prebuilt bool) *Index {
	return &Index{
		root:     &Node{},
		prebuilt: prebuilt,
		nodes:    1,
	}
}

// Insert adds term to the index. Re-inserting a known term only walks the
// existing path. The empty term marks the root terminal.
func (idx *Index) Insert(term string) error {
	if idx.sealed {
		return ErrIndexSealed
	}
	if !utf8.ValidString(term) {
		return fmt.Errorf("insert %q: %w", term, ErrInvalidInput)
	}

	n := idx.root
	for _, r := range term {
		var created bool
		n, created = n.childOrCreate(r)
		if created {
			idx.nodes++
		}
	}

	if !n.terminal {
		n.terminal = true
		if idx.prebuilt {
			n.term = term
		}
		idx.terms++
	}
	return nil
}

// Seal stops further insertion. There is no way back.
func (idx *Index) Seal() {
	idx.sealed = true
}

// Sealed reports whether the index is queryable.
func (idx *Index) Sealed() bool {
	return idx.sealed
}

// Locate returns the node representing prefix, or false as soon as a
// character has no child. The empty prefix locates the root.
func (idx *Index) Locate(prefix string) (*Node, bool) {
	n := idx.root
	for _, r := range prefix {
		n = n.child(r)
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

// Enumerate returns every term in the subtree rooted at n, except the one
// ending at n itself. accumulated is the prefix n represents.
func (idx *Index) Enumerate(n *Node, accumulated string) []string {
	return idx.enumerate(n, accumulated, -1)
}

// frame is one pending position of the walk: the node, the rune that leads
// to it and the path length of its parent.
type frame struct {
	node  *Node
	r     rune
	depth int
}

// enumerate walks depth-first with an explicit stack so very long terms do
// not grow the goroutine stack. Children are pushed in reverse so they pop in
// ascending rune order, which makes the output lexicographic. Paths share one
// buffer: a popped frame truncates it to its parent's length before appending
// its rune. A limit >= 0 stops the walk once that many terms were collected.
func (idx *Index) enumerate(n *Node, accumulated string, limit int) []string {
	if n == nil || limit == 0 {
		return []string{}
	}

	var results []string
	path := []byte(accumulated)
	stack := []frame{{node: n, depth: -1}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.depth >= 0 && !idx.prebuilt {
			path = utf8.AppendRune(path[:cur.depth], cur.r)
		}

		if cur.node.terminal && cur.node != n {
			if idx.prebuilt {
				results = append(results, cur.node.term)
			} else {
				results = append(results, string(path))
			}
			if limit > 0 && len(results) >= limit {
				break
			}
		}

		for i := len(cur.node.children) - 1; i >= 0; i-- {
			e := cur.node.children[i]
			stack = append(stack, frame{node: e.node, r: e.r, depth: len(path)})
		}
	}

	if results == nil {
		return []string{}
	}
	return results
}

// Len returns the number of distinct terms.
func (idx *Index) Len() int {
	return idx.terms
}

// Nodes returns the number of trie nodes, root included.
func (idx *Index) Nodes() int {
	return idx.nodes
}
