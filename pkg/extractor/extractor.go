package extractor

import (
	"github.com/hellenic-development/figma-import/pkg/figma"
)

// MaxDepth bounds the recursion of every tree walk in this package.
// Subtrees nested deeper than MaxDepth are ignored.
const MaxDepth = 512

// excludedTypes lists the container node types that are never exported as images.
// Their children are still visited.
var excludedTypes = map[string]bool{
	figma.TypeGroup:            true,
	figma.TypeBooleanOperation: true,
	figma.TypeSlice:            true,
}

// IsExcludedType reports whether nodes of the given type are skipped by CollectRenderable.
func IsExcludedType(nodeType string) bool {
	return excludedTypes[nodeType]
}

// IsRenderable reports whether a single node qualifies for image export:
// it must not be a GROUP, BOOLEAN_OPERATION or SLICE and it must carry an absolute bounding box.
func IsRenderable(node *figma.Node) bool {
	return node != nil && !IsExcludedType(node.Type) && node.HasBounds()
}

// FindNode searches the tree rooted at root, depth-first in pre-order, for the first node
// whose ID equals id exactly. Nodes without an ID never match.
// It returns false when no such node exists.
func FindNode(root *figma.Node, id string) (*figma.Node, bool) {
	if root == nil || id == "" {
		return nil, false
	}
	found := findNode(root, id, 0)
	return found, found != nil
}

func findNode(node *figma.Node, id string, depth int) *figma.Node {
	if node.ID == id {
		return node
	}
	if depth >= MaxDepth {
		return nil
	}

	for i := range node.Children {
		if found := findNode(&node.Children[i], id, depth+1); found != nil {
			return found
		}
	}

	return nil
}

// CollectRenderable walks the tree rooted at root in pre-order and returns, in traversal order,
// every node that passes IsRenderable. A node is evaluated before its children and children are
// always visited, so the children of an excluded GROUP are still collected. The root itself is
// evaluated like any other node.
//
// The returned slice is freshly allocated and points into the given tree; the order is stable for
// the same input and defines the stacking order of the imported layers.
func CollectRenderable(root *figma.Node) []*figma.Node {
	nodes := make([]*figma.Node, 0)
	if root == nil {
		return nodes
	}
	return collectRenderable(root, nodes, 0)
}

func collectRenderable(node *figma.Node, nodes []*figma.Node, depth int) []*figma.Node {
	if IsRenderable(node) {
		nodes = append(nodes, node)
	}
	if depth >= MaxDepth {
		return nodes
	}

	for i := range node.Children {
		nodes = collectRenderable(&node.Children[i], nodes, depth+1)
	}

	return nodes
}

// NodeIDs returns the IDs of nodes in order.
func NodeIDs(nodes []*figma.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// CountNodes returns the number of nodes in the tree rooted at root, root included.
func CountNodes(root *figma.Node) int {
	if root == nil {
		return 0
	}

	count := 0
	var walk func(n *figma.Node, depth int)
	walk = func(n *figma.Node, depth int) {
		count++
		if depth >= MaxDepth {
			return
		}
		for i := range n.Children {
			walk(&n.Children[i], depth+1)
		}
	}
	walk(root, 0)

	return count
}
