// Package convert turns document payloads that have no native text
// extractor into markdown, dispatching on the sniffed MIME type.
package convert

import (
	"fmt"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

// Converter transforms one family of document formats into markdown.
type Converter interface {
	AcceptedExtensions() []string
	AcceptedMimeTypes() []string
	Convert(data []byte) (string, error)
}

// Registry holds the available converters and routes payloads to them.
type Registry struct {
	Converters []Converter
}

// NewRegistry creates a Registry with all available converters registered.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewHTMLConverter())
	r.Register(NewCSVConverter())
	r.Register(NewExcelConverter())
	return r
}

// Register adds a converter to the registry.
func (r *Registry) Register(c Converter) {
	r.Converters = append(r.Converters, c)
}

// Convert sniffs the payload's MIME type and runs the first converter that
// accepts it. The sniffed type is mandatory; caller hints are ignored.
func (r *Registry) Convert(data []byte) (string, error) {
	mtype := mimetype.Detect(data)

	for _, c := range r.Converters {
		if accepts(mtype, c.AcceptedExtensions(), c.AcceptedMimeTypes()) {
			return c.Convert(data)
		}
	}
	return "", fmt.Errorf("no converter found for MIME type: %s", mtype.String())
}

func accepts(mtype *mimetype.MIME, extensions, mtypes []string) bool {
	if slices.Contains(extensions, mtype.Extension()) {
		return true
	}
	return slices.ContainsFunc(mtypes, mtype.Is)
}
