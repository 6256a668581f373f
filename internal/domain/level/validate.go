package level

import (
	"fmt"
)

// Severity distinguishes fatal authoring errors from advisory warnings
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one validation finding. Validation always returns every
// finding, not just the first, so editors can surface them in batch.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.NodeID != "" {
		return fmt.Sprintf("%s: node %s: %s", d.Severity, d.NodeID, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// HasErrors reports whether any diagnostic is fatal
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants a level must satisfy before
// it is playable. It has no side effects. Cycles are deliberately legal;
// the traversal engine tolerates revisiting nodes.
func Validate(l *Level) []Diagnostic {
	var diags []Diagnostic

	errf := func(nodeID, format string, args ...any) {
		diags = append(diags, Diagnostic{Severity: SeverityError, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(nodeID, format string, args ...any) {
		diags = append(diags, Diagnostic{Severity: SeverityWarning, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
	}

	if l == nil {
		return []Diagnostic{{Severity: SeverityError, Message: "level is nil"}}
	}
	if len(l.Nodes) == 0 {
		errf("", "level has no nodes")
		return diags
	}

	// Unique node ids, payload presence
	nodes := make(map[string]*Node, len(l.Nodes))
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.ID == "" {
			errf("", "node at index %d has an empty id", i)
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			errf(n.ID, "duplicate node id")
			continue
		}
		nodes[n.ID] = n
		if !n.HasPayload() {
			errf(n.ID, "missing payload for kind %q", n.Kind)
		}
	}

	// Dangling edges, adjacency
	incoming := make(map[string]int)
	outgoing := make(map[string][]Edge)
	edgeIDs := make(map[string]bool)
	for _, e := range l.Edges {
		if e.ID != "" {
			if edgeIDs[e.ID] {
				errf("", "duplicate edge id %q", e.ID)
			}
			edgeIDs[e.ID] = true
		}
		srcOK := nodes[e.Source] != nil
		dstOK := nodes[e.Target] != nil
		if !srcOK {
			errf("", "edge %q references unknown source node %q", e.ID, e.Source)
		}
		if !dstOK {
			errf("", "edge %q references unknown target node %q", e.ID, e.Target)
		}
		if srcOK && dstOK {
			incoming[e.Target]++
			outgoing[e.Source] = append(outgoing[e.Source], e)
		}
	}

	// Exactly one start, no incoming edges into it
	var start *Node
	startCount := 0
	endCount := 0
	for i := range l.Nodes {
		n := &l.Nodes[i]
		switch n.Kind {
		case KindStart:
			startCount++
			start = n
		case KindEnd:
			endCount++
		}
	}
	if startCount == 0 {
		errf("", "level has no start node")
	} else if startCount > 1 {
		errf("", "level has %d start nodes, want exactly 1", startCount)
	}
	if start != nil && incoming[start.ID] > 0 {
		errf(start.ID, "start node has %d incoming edges, want 0", incoming[start.ID])
	}
	if endCount == 0 {
		errf("", "level has no end node")
	}

	// Every non-start node must be enterable
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if n.Kind != KindStart && nodes[n.ID] == n && incoming[n.ID] == 0 {
			errf(n.ID, "unreachable: no incoming edges")
		}
	}

	// Per-node branch contracts
	for i := range l.Nodes {
		n := &l.Nodes[i]
		if nodes[n.ID] != n {
			continue
		}
		out := outgoing[n.ID]
		tags := make(map[string]int)
		untagged := 0
		for _, e := range out {
			if e.BranchTag == "" {
				untagged++
			} else {
				tags[e.BranchTag]++
			}
		}

		switch n.Kind {
		case KindChoice:
			if n.Choice == nil {
				break
			}
			if len(n.Choice.Options) == 0 {
				warnf(n.ID, "choice node has no options; players hit a dead end here")
			}
			seen := make(map[string]bool)
			for _, opt := range n.Choice.Options {
				if seen[opt.ID] {
					errf(n.ID, "duplicate choice option id %q", opt.ID)
					continue
				}
				seen[opt.ID] = true
				if tags[opt.ID] == 0 {
					errf(n.ID, "choice option %q has no outgoing edge", opt.ID)
				} else if tags[opt.ID] > 1 {
					errf(n.ID, "choice option %q has %d outgoing edges, want exactly 1", opt.ID, tags[opt.ID])
				}
			}
			for tag := range tags {
				if !seen[tag] {
					errf(n.ID, "outgoing edge tag %q matches no choice option", tag)
				}
			}
			if untagged > 0 {
				// A zero-option choice is a dead end regardless of
				// its edges, so stray edges only rate a warning.
				if len(n.Choice.Options) == 0 {
					warnf(n.ID, "choice node has %d untagged outgoing edges; they are never followed", untagged)
				} else {
					errf(n.ID, "choice node has %d untagged outgoing edges", untagged)
				}
			}
		case KindAbilityCheck:
			if tags[BranchSuccess] == 0 {
				errf(n.ID, "ability check is missing a %q edge", BranchSuccess)
			}
			if tags[BranchFailure] == 0 {
				errf(n.ID, "ability check is missing a %q edge", BranchFailure)
			}
		case KindQuestion:
			if tags[BranchCorrect] == 0 {
				errf(n.ID, "question node is missing a %q edge", BranchCorrect)
			}
			if tags[BranchIncorrect] == 0 {
				errf(n.ID, "question node is missing a %q edge", BranchIncorrect)
			}
		case KindEnd:
			if len(out) > 0 {
				warnf(n.ID, "end node has outgoing edges; they are never followed")
			}
		default:
			// Untagged edges are only unconditional when they are the
			// sole way out.
			if untagged > 0 && len(out) > 1 {
				errf(n.ID, "untagged edge on a node with %d outgoing edges", len(out))
			}
		}
	}

	// Reachability from start: at least one end must be reachable, and
	// unreachable nodes are worth flagging to authors.
	if start != nil && startCount == 1 {
		reached := make(map[string]bool)
		queue := []string{start.ID}
		reached[start.ID] = true
		endReachable := false
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if n := nodes[id]; n != nil && n.Kind == KindEnd {
				endReachable = true
			}
			for _, e := range outgoing[id] {
				if !reached[e.Target] {
					reached[e.Target] = true
					queue = append(queue, e.Target)
				}
			}
		}
		if endCount > 0 && !endReachable {
			errf("", "no end node is reachable from the start node")
		}
		for i := range l.Nodes {
			n := &l.Nodes[i]
			if nodes[n.ID] == n && !reached[n.ID] {
				warnf(n.ID, "not reachable from the start node")
			}
		}
	}

	return diags
}
