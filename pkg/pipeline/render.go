package pipeline

import (
	"fmt"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/render/nodelink"
)

// Output formats for rendered placements.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats lists the supported render formats.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// Render draws the device of res with its placement overlaid.
func Render(res *Result, format string, opts nodelink.Options) ([]byte, error) {
	format, err := errors.ValidateFormat(format, ValidFormats...)
	if err != nil {
		return nil, err
	}
	view := nodelink.View{Device: res.Device, Augmented: res.Augmented, Gates: res.Gates}
	if res.Placement != nil {
		view.Placement = res.Placement.Placement
	}
	dot := nodelink.ToDOT(view, opts)

	var data []byte
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(dot)
	case FormatPNG:
		data, err = nodelink.RenderPNG(dot, 2.0)
	case FormatPDF:
		data, err = nodelink.RenderPDF(dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
