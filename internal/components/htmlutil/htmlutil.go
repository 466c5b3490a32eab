package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

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

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
			continue
		}
		if unicode.IsSpace(c) {
			newStr.WriteRune(' ')
		}
	}
	return newStr.String()
}

// CleanText turns whitespace like newlines or non-breaking spaces into plain
// spaces, collapses runs of them and trims the result.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SelectionText returns the cleaned text of every node in the selection.
func SelectionText(sel *goquery.Selection) string {
	var buffer strings.Builder
	for _, n := range sel.Nodes {
		buffer.WriteString(GetText(n))
	}
	return CleanText(buffer.String())
}
