package doctree

import "strings"

// Visitor is called for every node reached by Walk. Exactly one of the
// arguments is non-nil.
type Visitor func(b Block, e ListEntry, in Inline)

// Walk visits every node of doc in document order, parents before children.
func Walk(doc Document, visit Visitor) {
	for _, b := range doc {
		walkBlock(b, visit)
	}
}

func walkBlock(b Block, visit Visitor) {
	visit(b, nil, nil)
	switch b := b.(type) {
	case Paragraph:
		walkInlines(b.Inlines, visit)
	case Heading:
		walkInlines(b.Inlines, visit)
	case Quote:
		for _, c := range b.Children {
			walkBlock(c, visit)
		}
	case OrderedList:
		walkEntries(b.Items, visit)
	case UnorderedList:
		walkEntries(b.Items, visit)
	}
}

func walkEntries(items []ListEntry, visit Visitor) {
	for _, e := range items {
		visit(nil, e, nil)
		switch e := e.(type) {
		case Item:
			walkInlines(e.Inlines, visit)
		case NestedOrderedList:
			walkEntries(e.Items, visit)
		case NestedUnorderedList:
			walkEntries(e.Items, visit)
		}
	}
}

func walkInlines(in []Inline, visit Visitor) {
	for _, n := range in {
		visit(nil, nil, n)
		switch n := n.(type) {
		case Emphasis:
			walkInlines(n.Children, visit)
		case Strong:
			walkInlines(n.Children, visit)
		case Strike:
			walkInlines(n.Children, visit)
		case Link:
			walkInlines(n.Children, visit)
		}
	}
}

// PlainText flattens doc to its literal content, one line per block or
// list item.
func PlainText(doc Document) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	Walk(doc, func(b Block, e ListEntry, in Inline) {
		switch {
		case b != nil:
			flush()
			if c, ok := b.(CodeBlock); ok {
				cur.WriteString(strings.TrimRight(c.Code, "\n"))
			}
		case e != nil:
			flush()
		}
		switch n := in.(type) {
		case Text:
			cur.WriteString(n.Value)
		case InlineCode:
			cur.WriteString(n.Value)
		case InlineMath:
			cur.WriteString(n.Value)
		case DisplayMath:
			cur.WriteString(n.Value)
		case Image:
			cur.WriteString(n.Alt)
		case LineBreak:
			cur.WriteString(" ")
		}
	})
	flush()
	return strings.Join(lines, "\n")
}
