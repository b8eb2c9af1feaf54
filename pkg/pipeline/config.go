package pipeline

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qplace/pkg/errors"
)

// LoadConfig reads options from a TOML file on top of DefaultOptions.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func LoadConfig(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open config %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open config %s", path)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig is LoadConfig for an open reader.
func DecodeConfig(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.NewDecoder(r).Decode(&opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Options{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}
