package app

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string) (printer, error) {
	switch format {
	case formatJSON, formatYAML:
		return printer{format: format}, nil
	default:
		return printer{}, fmt.Errorf("invalid --output %q, must be %s or %s", format, formatJSON, formatYAML)
	}
}

// print writes v in the selected format. YAML output keeps the JSON field
// names.
func (p printer) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	if p.format == formatYAML {
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		if b, err = yaml.Marshal(doc); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		_, err = p.w.Write(b)
		return err
	}

	_, err = fmt.Fprintln(p.w, string(b))
	return err
}
