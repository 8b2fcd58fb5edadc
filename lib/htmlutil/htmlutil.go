package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Texts returns the text content of every node in the selection, in document
// order. The text is returned exactly as it appears in the document.
func Texts(sel *goquery.Selection) []string {
	texts := make([]string, len(sel.Nodes))
	for i, n := range sel.Nodes {
		texts[i] = GetText(n)
	}
	return texts
}

// TrimmedTexts is Texts with leading and trailing whitespace (including
// the full-width space U+3000) removed from every entry.
func TrimmedTexts(sel *goquery.Selection) []string {
	texts := Texts(sel)
	for i, t := range texts {
		texts[i] = strings.TrimSpace(t)
	}
	return texts
}
