// Package doctree holds the typed document tree produced by the parser.
//
// Block, ListEntry and Inline are closed sets: each is an interface sealed
// by an unexported marker method, so only the types in this package
// implement them and a type switch over them can be exhaustive.
package doctree

// Document is the ordered sequence of top-level blocks.
type Document []Block

// Block is a block-level node.
type Block interface {
	isBlock()
}

// ListEntry is one entry of a list: an item or a nested list.
type ListEntry interface {
	isListEntry()
}

// Inline is an inline-level node.
type Inline interface {
	isInline()
}

type Paragraph struct {
	Inlines []Inline
}

// Rule is a thematic break.
type Rule struct{}

type Heading struct {
	Level   int // 1-6
	Inlines []Inline
}

// CodeBlock is a fenced or indented code block. Lang is nil for indented
// blocks and holds the fence info string (possibly empty) otherwise.
type CodeBlock struct {
	Lang *string
	Code string
}

// Quote is a block quote; its children form a document of their own.
type Quote struct {
	Children []Block
}

type OrderedList struct {
	Start uint64
	Items []ListEntry
}

type UnorderedList struct {
	Items []ListEntry
}

func (Paragraph) isBlock()     {}
func (Rule) isBlock()          {}
func (Heading) isBlock()       {}
func (CodeBlock) isBlock()     {}
func (Quote) isBlock()         {}
func (OrderedList) isBlock()   {}
func (UnorderedList) isBlock() {}

// NestedOrderedList is an ordered list appearing as an entry of another list.
type NestedOrderedList struct {
	Start uint64
	Items []ListEntry
}

// NestedUnorderedList is an unordered list appearing as an entry of another list.
type NestedUnorderedList struct {
	Items []ListEntry
}

// Item is a list item. Checkbox is nil unless the item is a task item,
// in which case it points at the checked state.
type Item struct {
	Checkbox *bool
	Inlines  []Inline
}

func (NestedOrderedList) isListEntry()   {}
func (NestedUnorderedList) isListEntry() {}
func (Item) isListEntry()                {}

type Text struct {
	Value string
}

type InlineCode struct {
	Value string
}

type InlineMath struct {
	Value string
}

// DisplayMath is block math that the tokenizer reports in inline position.
type DisplayMath struct {
	Value string
}

type Emphasis struct {
	Children []Inline
}

type Strong struct {
	Children []Inline
}

type Strike struct {
	Children []Inline
}

// LineBreak is a hard line break.
type LineBreak struct{}

type Link struct {
	Target   string
	Children []Inline
}

// Image carries only the flattened literal text of its description.
type Image struct {
	Target string
	Alt    string
}

func (Text) isInline()        {}
func (InlineCode) isInline()  {}
func (InlineMath) isInline()  {}
func (DisplayMath) isInline() {}
func (Emphasis) isInline()    {}
func (Strong) isInline()      {}
func (Strike) isInline()      {}
func (LineBreak) isInline()   {}
func (Link) isInline()        {}
func (Image) isInline()       {}

// Bool returns a pointer to v, for building Item checkboxes.
func Bool(v bool) *bool { return &v }

// String returns a pointer to s, for building CodeBlock languages.
func String(s string) *string { return &s }
