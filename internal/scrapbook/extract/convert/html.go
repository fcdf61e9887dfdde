package convert

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTMLConverter converts HTML documents into markdown.
type HTMLConverter struct{}

// NewHTMLConverter creates a new HTMLConverter.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{}
}

func (c *HTMLConverter) AcceptedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

func (c *HTMLConverter) AcceptedMimeTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Convert renders the HTML body as markdown.
func (c *HTMLConverter) Convert(data []byte) (string, error) {
	return htmltomarkdown.ConvertString(string(data))
}

var _ Converter = (*HTMLConverter)(nil)
