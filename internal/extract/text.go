package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// TruncationMarker is appended to document text cut at the size limit.
const TruncationMarker = "\n\n[TRUNCATED]"

// LoadDocumentText reads a court document and returns the text handed to
// the extraction oracle. HTML exports are reduced to their visible text;
// anything else is read verbatim. maxChars <= 0 disables truncation.
func LoadDocumentText(path string, maxChars int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	text, err := DocumentText(string(data), IsHTML(path, ""), maxChars)
	if err != nil {
		return "", fmt.Errorf("parse html document %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// DocumentText prepares raw document content for the extraction oracle
func DocumentText(content string, isHTML bool, maxChars int) (string, error) {
	text := content
	if isHTML {
		var err error
		if text, err = VisibleText(content); err != nil {
			return "", err
		}
	}
	return Truncate(strings.TrimSpace(text), maxChars), nil
}

// IsHTML reports whether a document is an HTML export, judged by its
// media type when known and by the file extension otherwise
func IsHTML(name, contentType string) bool {
	if contentType != "" {
		ct := strings.ToLower(contentType)
		if strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml") {
			return true
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// VisibleText returns the text nodes of an HTML document, skipping
// scripts, styles and embedded frames
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String(), nil
}

// Truncate cuts text to maxChars runes and appends TruncationMarker.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + TruncationMarker
}
