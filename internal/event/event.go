// Package event defines the flat lexical event stream that the document
// builder consumes. Containers are bracketed by paired Start/End events;
// everything else is a single leaf event.
package event

import "fmt"

// Kind identifies the shape of an Event.
type Kind uint8

const (
	KindStart Kind = iota + 1
	KindEnd
	KindText
	KindCode        // inline code span
	KindInlineMath  // $...$
	KindDisplayMath // $$...$$
	KindHTML        // one line of an HTML block
	KindInlineHTML
	KindSoftBreak
	KindHardBreak
	KindRule
	KindTaskListMarker
)

var kindNames = map[Kind]string{
	KindStart:          "start",
	KindEnd:            "end",
	KindText:           "text",
	KindCode:           "code",
	KindInlineMath:     "inline_math",
	KindDisplayMath:    "display_math",
	KindHTML:           "html",
	KindInlineHTML:     "inline_html",
	KindSoftBreak:      "soft_break",
	KindHardBreak:      "hard_break",
	KindRule:           "rule",
	KindTaskListMarker: "task_list_marker",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", k)
}

// TagKind identifies the construct a Start or End event brackets.
type TagKind uint8

const (
	TagParagraph TagKind = iota + 1
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagHTMLBlock
	TagList
	TagItem
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagImage
	TagTable
	TagTableHead
	TagTableRow
	TagTableCell
)

var tagNames = map[TagKind]string{
	TagParagraph:     "paragraph",
	TagHeading:       "heading",
	TagBlockQuote:    "blockquote",
	TagCodeBlock:     "code_block",
	TagHTMLBlock:     "html_block",
	TagList:          "list",
	TagItem:          "item",
	TagEmphasis:      "emphasis",
	TagStrong:        "strong",
	TagStrikethrough: "strikethrough",
	TagLink:          "link",
	TagImage:         "image",
	TagTable:         "table",
	TagTableHead:     "table_head",
	TagTableRow:      "table_row",
	TagTableCell:     "table_cell",
}

func (k TagKind) String() string {
	if s, ok := tagNames[k]; ok {
		return s
	}
	return fmt.Sprintf("tag(%d)", k)
}

// Tag is the payload of a Start event.
type Tag struct {
	Kind TagKind

	// Heading
	Level int

	// Code block. Info is the fence info string and is only meaningful
	// when Fenced is set.
	Fenced bool
	Info   string

	// List. Start is the first item's ordinal when Ordered is set.
	Ordered bool
	Start   uint64

	// Link, image
	Dest  string
	Title string
}

// TagEnd is the payload of an End event. Two ends are the same
// terminator exactly when they compare equal.
type TagEnd struct {
	Kind    TagKind
	Level   int
	Ordered bool
}

// End returns the terminator that closes t.
func (t Tag) End() TagEnd {
	e := TagEnd{Kind: t.Kind}
	switch t.Kind {
	case TagHeading:
		e.Level = t.Level
	case TagList:
		e.Ordered = t.Ordered
	}
	return e
}

// HeadingEnd is the terminator for a heading of the given level.
func HeadingEnd(level int) TagEnd { return TagEnd{Kind: TagHeading, Level: level} }

// ListEnd is the terminator for an ordered or unordered list.
func ListEnd(ordered bool) TagEnd { return TagEnd{Kind: TagList, Ordered: ordered} }

// Event is one element of the stream. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind    Kind
	Tag     Tag
	End     TagEnd
	Text    string
	Checked bool
}

// Start returns a Start event for tag.
func Start(tag Tag) Event { return Event{Kind: KindStart, Tag: tag} }

// End returns an End event closing the construct identified by end.
func End(end TagEnd) Event { return Event{Kind: KindEnd, End: end} }

// Text returns a literal text event.
func Text(s string) Event { return Event{Kind: KindText, Text: s} }

// Code returns an inline code span event.
func Code(s string) Event { return Event{Kind: KindCode, Text: s} }

// InlineMath returns an inline math event.
func InlineMath(s string) Event { return Event{Kind: KindInlineMath, Text: s} }

// DisplayMath returns a display math event.
func DisplayMath(s string) Event { return Event{Kind: KindDisplayMath, Text: s} }

// HTML returns a raw HTML block line event.
func HTML(s string) Event { return Event{Kind: KindHTML, Text: s} }

// InlineHTML returns an inline raw HTML event.
func InlineHTML(s string) Event { return Event{Kind: KindInlineHTML, Text: s} }

// SoftBreak returns a soft line break event.
func SoftBreak() Event { return Event{Kind: KindSoftBreak} }

// HardBreak returns a hard line break event.
func HardBreak() Event { return Event{Kind: KindHardBreak} }

// Rule returns a thematic break event.
func Rule() Event { return Event{Kind: KindRule} }

// TaskListMarker returns a task list checkbox event.
func TaskListMarker(checked bool) Event { return Event{Kind: KindTaskListMarker, Checked: checked} }

func (e Event) String() string {
	switch e.Kind {
	case KindStart:
		switch e.Tag.Kind {
		case TagHeading:
			return fmt.Sprintf("start(%s %d)", e.Tag.Kind, e.Tag.Level)
		case TagList:
			if e.Tag.Ordered {
				return fmt.Sprintf("start(list %d)", e.Tag.Start)
			}
			return "start(list)"
		case TagCodeBlock:
			if e.Tag.Fenced {
				return fmt.Sprintf("start(code_block %q)", e.Tag.Info)
			}
			return "start(code_block)"
		case TagLink, TagImage:
			return fmt.Sprintf("start(%s %q)", e.Tag.Kind, e.Tag.Dest)
		}
		return fmt.Sprintf("start(%s)", e.Tag.Kind)
	case KindEnd:
		return fmt.Sprintf("end(%s)", e.End.Kind)
	case KindTaskListMarker:
		return fmt.Sprintf("task_list_marker(%t)", e.Checked)
	case KindSoftBreak, KindHardBreak, KindRule:
		return e.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", e.Kind, e.Text)
}
