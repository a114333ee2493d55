package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

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

// SplitAtBreak returns the text of the children of node before and after
// its first <br> child, later <br> children become newlines. ok is false when
// node has no direct <br> child.
func SplitAtBreak(node *html.Node) (before, after string, ok bool) {
	var head, tail bytes.Buffer
	current := &head
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == atom.Br {
			if !ok {
				ok = true
				current = &tail
				continue
			}
			current.WriteByte('\n')
			continue
		}
		getTextRecursive(child, current)
	}
	return head.String(), tail.String(), ok
}

// ContainsElement reports whether any descendant of node is an element with
// one of the given tags.
func ContainsElement(node *html.Node, tags ...atom.Atom) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			for _, tag := range tags {
				if child.DataAtom == tag {
					return true
				}
			}
		}
		if ContainsElement(child, tags...) {
			return true
		}
	}
	return false
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses every run of whitespace into a single space, trims the
// result and removes non printable characters.
func CleanText(s string) string {
	return removeNonPrintable(strings.Join(strings.Fields(s), " "))
}

var tagRegex = regexp.MustCompile(`<.*?>`)

// StripTags removes anything that looks like a tag from raw markup without
// parsing it.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}
