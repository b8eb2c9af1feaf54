// Package render draws devices and placements.
//
// The [nodelink] subpackage produces Graphviz diagrams of a device with the
// placed qubits overlaid. [ToPDF] and [ToPNG] convert its SVG output with
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(view, nodelink.Options{ShowWeights: true})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/qplace/pkg/render/nodelink
package render
