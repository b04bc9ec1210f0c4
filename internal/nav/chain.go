package nav

// Chain links nodes in slice order: each node's NextID is the following node
// and PrevID the preceding one. Edges already set on a node are kept.
func Chain(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if i > 0 && out[i].PrevID == "" {
			out[i].PrevID = out[i-1].ID
		}
		if i < len(out)-1 && out[i].NextID == "" {
			out[i].NextID = out[i+1].ID
		}
	}
	return out
}
