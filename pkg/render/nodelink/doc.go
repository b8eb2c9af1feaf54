// Package nodelink renders a device as an undirected node-link diagram.
//
// Physical qubits are circles labelled with their vertex id; a qubit that
// holds a logical qubit is filled and shows "q<n>" underneath. Device edges
// are solid. Synthetic edges added by augmentation are dashed and grey, and
// are only drawn when [Options.ShowAugmented] is set. Edges that carry a
// two-qubit gate of the circuit are drawn bold.
//
//	dot := nodelink.ToDOT(nodelink.View{
//	    Device:    device,
//	    Augmented: augmented,
//	    Placement: res.Placement,
//	}, nodelink.Options{ShowWeights: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source selects the neato layout engine, which suits lattice and
// ring devices better than the layered dot engine. In-process rendering uses
// [github.com/goccy/go-graphviz].
package nodelink
