package hierarchy

import "github.com/google/uuid"

// Node is one entry in the nested organisation chart.
type Node struct {
	Member  Member
	Reports []Node
}

// Forest builds the nested organisation chart from a directory snapshot: one
// tree per root-level member, reports in list order. A member whose manager is
// missing from the snapshot is surfaced as an extra root rather than dropped,
// so a chart rendered mid-repair still shows everyone.
func Forest(members []Member) []Node {
	index := reportsIndex(members)

	present := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		present[m.ID] = true
	}

	var roots []Node
	for _, m := range members {
		managerID, ok := m.Manager.ID()
		if !ok || !present[managerID] {
			roots = append(roots, buildNode(index, m))
		}
	}
	return roots
}

func buildNode(index map[uuid.UUID][]Member, m Member) Node {
	node := Node{Member: m}
	for _, report := range index[m.ID] {
		node.Reports = append(node.Reports, buildNode(index, report))
	}
	return node
}
