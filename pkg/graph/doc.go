// Package graph provides the weighted undirected graphs that flow through
// placement, together with their file format.
//
// # Core Types
//
//   - [Vertex]: a logical (pattern) or physical (target) qubit
//   - [Edge]: an unordered vertex pair, canonicalised smaller id first
//   - [Weighted]: a map from [Edge] to [weight.Weight]
//
// Three instances of [Weighted] appear in a placement request: the pattern
// graph built from the circuit, the original device graph, and the augmented
// device graph that also carries synthetic edges.
//
// # Serialization
//
// Graphs use a simple edge-list format, either JSON:
//
//	{
//	  "edges": [{"from": 0, "to": 1, "weight": 3}]
//	}
//
// or TOML:
//
//	[[edges]]
//	from = 0
//	to = 1
//	weight = 3
//
// Common operations:
//
//	g, _ := graph.ReadFile("device.json")    // File → Weighted
//	graph.WriteFile(g, "device.toml")        // Weighted → File
//	data, _ := graph.Marshal(g)              // Weighted → JSON bytes
package graph
