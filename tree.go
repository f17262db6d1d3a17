package snopat

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/coregx/snopat/engine"
)

// Tree returns a text tree of the pattern's nodes, following successor
// chains from the root. A node with an alternate opens two branches, "succ"
// and "alt". A node already shown is printed as a back reference "-> N".
//
// Example output for Alternate(Lit("a"), Lit("bc")):
//
//	pattern (stack 1)
//	└── 3 alt
//	    ├── succ
//	    │   ├── 2 char "a"
//	    │   └── end
//	    └── alt
//	        ├── 1 string "bc"
//	        └── end
func (p *Pattern) Tree() string {
	g := p.Graph()
	root := treeprint.NewWithRoot(fmt.Sprintf("pattern (stack %d)", g.Stack()))
	tw := &treeWriter{g: g, seen: make(map[engine.NodeID]bool, g.Len())}
	tw.chain(root, g.Root())
	return root.String()
}

type treeWriter struct {
	g    *engine.Graph
	seen map[engine.NodeID]bool
}

// chain adds the nodes on the successor chain starting at id to branch.
func (tw *treeWriter) chain(branch treeprint.Tree, id engine.NodeID) {
	for id != engine.EOP {
		if tw.seen[id] {
			branch.AddNode(fmt.Sprintf("-> %d", id))
			return
		}
		tw.seen[id] = true

		nd := tw.g.Node(id)
		label := fmt.Sprintf("%d %s", id, nd.Kind())
		if d := nd.Data(); d != "" {
			label += " " + d
		}

		if nd.Kind().HasAlt() {
			b := branch.AddBranch(label)
			tw.chain(b.AddBranch("succ"), nd.Succ())
			tw.chain(b.AddBranch("alt"), nd.Alt())
			return
		}
		branch.AddNode(label)
		id = nd.Succ()
	}
	branch.AddNode("end")
}
