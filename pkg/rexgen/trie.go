package rexgen

// indexThreshold is the edge count above which a node switches from a
// linear scan to a map lookup.
const indexThreshold = 8

// node is a prefix trie node over token keys. Edges keep insertion order so
// output is deterministic.
type node struct {
	edges    []edge
	index    map[string]int
	terminal bool
}

type edge struct {
	tok  token
	next *node
}

func newNode() *node {
	return &node{}
}

func (n *node) insert(tokens []token) {
	cur := n

	for _, tok := range tokens {
		pos := cur.find(tok.key)
		if pos < 0 {
			pos = cur.add(tok)
		}

		cur = cur.edges[pos].next
	}

	cur.terminal = true
}

func (n *node) find(key string) int {
	if n.index != nil {
		if pos, ok := n.index[key]; ok {
			return pos
		}

		return -1
	}

	for i := range n.edges {
		if n.edges[i].tok.key == key {
			return i
		}
	}

	return -1
}

func (n *node) add(tok token) int {
	pos := len(n.edges)
	n.edges = append(n.edges, edge{tok: tok, next: newNode()})

	switch {
	case n.index != nil:
		n.index[tok.key] = pos
	case len(n.edges) > indexThreshold:
		n.index = make(map[string]int, len(n.edges))
		for i := range n.edges {
			n.index[n.edges[i].tok.key] = i
		}
	}

	return pos
}

// branches reports whether the node renders as a group: more than one way
// to continue, or the option to stop here.
func (n *node) branches() bool {
	return len(n.edges) > 1 || (n.terminal && len(n.edges) > 0)
}
