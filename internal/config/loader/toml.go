package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// ParseTOML decodes a TOML document. source names it in errors.
func ParseTOML(source string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}
