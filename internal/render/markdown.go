// Package render formats a changelog document for display or file output.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/roivaz/changelog-agent/internal/changelog"
)

// Markdown lays the document out as a markdown page: title heading,
// description body, then a summary section.
func Markdown(doc changelog.Document) string {
	return fmt.Sprintf("# %s\n\n%s\n\n## Summary\n\n%s\n", doc.Title, doc.Description, doc.Summary)
}

// HTML converts the markdown layout to HTML.
func HTML(doc changelog.Document) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("convert changelog to html: %w", err)
	}
	return buf.String(), nil
}
