package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/render"
	"github.com/matzehuels/qplace/pkg/weight"
)

// DefaultLayout is the Graphviz engine used when Options.Layout is empty.
const DefaultLayout = "neato"

// View is what a diagram shows.
type View struct {
	// Device is the original device graph. Required.
	Device graph.Weighted
	// Augmented, if set, contributes the synthetic edges.
	Augmented graph.Weighted
	// Placement maps logical qubits to device vertices.
	Placement placement.Placement
	// Gates marks the device edges used by two-qubit gates.
	Gates circuit.Gates
}

// Options configures diagram generation.
type Options struct {
	// ShowWeights labels edges with their weight.
	ShowWeights bool
	// ShowAugmented draws synthetic edges from View.Augmented.
	ShowAugmented bool
	// Layout is the Graphviz engine. Defaults to DefaultLayout.
	Layout string
}

// ToDOT converts v to Graphviz DOT source.
func ToDOT(v View, opts Options) string {
	layout := opts.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	tokens := make(map[graph.Vertex]graph.Vertex, len(v.Placement))
	for p, t := range v.Placement {
		tokens[t] = p
	}
	used := gateEdges(v)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.5];\n")
	buf.WriteString("\n")

	vertices := v.Device.Vertices()
	if opts.ShowAugmented && v.Augmented != nil {
		vertices = v.Augmented.Vertices()
	}
	for _, vx := range vertices {
		fmt.Fprintf(&buf, "  %d [%s];\n", vx, strings.Join(nodeAttrs(vx, tokens), ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Device.Edges() {
		w, _ := v.Device.Get(e.A, e.B)
		attrs := edgeAttrs(w, opts.ShowWeights)
		if used[e] {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %d -- %d [%s];\n", e.A, e.B, strings.Join(attrs, ", "))
	}
	if opts.ShowAugmented {
		for _, e := range v.Augmented.Edges() {
			if v.Device.Has(e.A, e.B) {
				continue
			}
			w, _ := v.Augmented.Get(e.A, e.B)
			attrs := append(edgeAttrs(w, opts.ShowWeights), "style=dashed", "color=grey", "fontcolor=grey")
			if used[e] {
				attrs = append(attrs, "penwidth=2")
			}
			fmt.Fprintf(&buf, "  %d -- %d [%s];\n", e.A, e.B, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(v graph.Vertex, tokens map[graph.Vertex]graph.Vertex) []string {
	q, ok := tokens[v]
	if !ok {
		return []string{fmt.Sprintf("label=%q", strconv.FormatUint(uint64(v), 10))}
	}
	return []string{
		fmt.Sprintf("label=%q", fmt.Sprintf("%d\nq%d", v, q)),
		"fillcolor=lightblue",
	}
}

func edgeAttrs(w weight.Weight, showWeight bool) []string {
	if !showWeight {
		return nil
	}
	return []string{fmt.Sprintf("label=%q", strconv.FormatUint(uint64(w), 10))}
}

// gateEdges returns the device pairs that host a two-qubit gate.
func gateEdges(v View) map[graph.Edge]bool {
	used := make(map[graph.Edge]bool)
	for _, pair := range v.Gates.TwoQubit() {
		a, okA := v.Placement[pair.A]
		b, okB := v.Placement[pair.B]
		if okA && okB {
			used[graph.NewEdge(a, b)] = true
		}
	}
	return used
}

// RenderSVG renders DOT source to SVG with Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source to PDF via SVG.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source to PNG via SVG at the given scale.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
