// This file is part of cpvc.
//
// cpvc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpvc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpvc.  If not, see <https://www.gnu.org/licenses/>.


// Package treeviz renders the shape of a history tree in the Graphviz DOT
// language. The output is intended for debugging branching and deletion
// behaviour and is produced with the memviz package, which draws any Go data
// structure by following its pointers.
//
// Snapshot data is not included in the output, only the size of it.
package treeviz

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/history"
)

// Node is a simplified view of a history.Event. Only the fields that are
// useful in a diagram are included.
type Node struct {
	ID       uint64
	Kind     string
	Tick     uint64
	Detail   string
	Current  bool
	Children []*Node
}

// Build the Node graph for the tree. The returned Node is the root.
func Build(tree *history.Tree) (*Node, error) {
	nodes := make(map[history.EventID]*Node)
	current := tree.CurrentID()

	var err error
	tree.Walk(func(e history.Event) bool {
		n := &Node{
			ID:      uint64(e.ID),
			Kind:    e.Kind.String(),
			Tick:    e.Tick,
			Current: e.ID == current,
		}

		switch e.Kind {
		case history.RequestEvent:
			n.Detail = e.Request.String()
		case history.BookmarkEvent:
			if e.UserBookmark {
				n.Detail = "user"
			} else {
				n.Detail = "system"
			}
		}

		nodes[e.ID] = n

		if e.Kind == history.Root {
			return true
		}

		p, ok := nodes[e.Parent]
		if !ok {
			err = curated.Errorf("treeviz: event %d precedes its parent %d", e.ID, e.Parent)
			return false
		}
		p.Children = append(p.Children, n)

		return true
	})
	if err != nil {
		return nil, err
	}

	root, ok := nodes[history.RootID]
	if !ok {
		return nil, curated.Errorf("treeviz: %v", "tree has no root")
	}

	return root, nil
}

// Write the DOT representation of the tree to output.
func Write(output io.Writer, tree *history.Tree) error {
	root, err := Build(tree)
	if err != nil {
		return err
	}
	memviz.Map(output, root)
	return nil
}
