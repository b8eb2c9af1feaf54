package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/qplace/pkg/errors"
)

// Converter is the external SVG converter used by [ToPDF] and [ToPNG].
var Converter = "rsvg-convert"

// ToPDF converts an SVG drawing to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG converts an SVG drawing to PNG, scaled by scale.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
	}
	return convert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convert(svg []byte, format string, extra ...string) ([]byte, error) {
	path, err := exec.LookPath(Converter)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s output needs %s (librsvg): brew install librsvg, or apt install librsvg2-bin", format, Converter)
	}

	cmd := exec.Command(path, append([]string{"-f", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", Converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
