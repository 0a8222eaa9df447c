package document

import (
	"fmt"
	"io"
	"strings"
)

// Renderer writes a composed Document in a concrete file format.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer registered for format ("pdf" or "xlsx").
func RendererFor(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pdf":
		return PDFRenderer{}, nil
	case "xlsx":
		return XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
