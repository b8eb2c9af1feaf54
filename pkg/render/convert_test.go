package render

import (
	"testing"

	"github.com/matzehuels/qplace/pkg/errors"
)

func TestMissingConverter(t *testing.T) {
	old := Converter
	Converter = "qplace-no-such-converter"
	t.Cleanup(func() { Converter = old })

	_, err := ToPDF([]byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() err = %v, want UNSUPPORTED", err)
	}
}

func TestPNGScale(t *testing.T) {
	_, err := ToPNG([]byte("<svg/>"), 0)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ToPNG(scale 0) err = %v, want INVALID_INPUT", err)
	}
}
