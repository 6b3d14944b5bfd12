// Package tokenizer turns raw Markdown into the flat event stream consumed
// by the document builder. Parsing is delegated to goldmark; the resulting
// AST is walked once and flattened back into paired Start/End events.
package tokenizer

import (
	"strings"

	"github.com/dgallion1/docmark/internal/event"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Tokenizer is safe for concurrent use.
type Tokenizer struct {
	md goldmark.Markdown
}

// Option configures a Tokenizer.
type Option func(*config)

type config struct {
	typographer bool
	math        bool
}

// WithTypographer enables smart punctuation (curly quotes, dashes,
// ellipses). Substitutions are emitted as plain unicode text.
func WithTypographer(on bool) Option {
	return func(c *config) { c.typographer = on }
}

// WithMath toggles recognition of $inline$ and $$display$$ math.
func WithMath(on bool) Option {
	return func(c *config) { c.math = on }
}

// New builds a Tokenizer with strikethrough, task lists and tables always
// enabled. Math is on by default; the typographer is off.
func New(opts ...Option) *Tokenizer {
	cfg := config{math: true}
	for _, o := range opts {
		o(&cfg)
	}

	exts := []goldmark.Extender{
		extension.Strikethrough,
		extension.TaskList,
		extension.Table,
	}
	if cfg.math {
		exts = append(exts, Math)
	}
	if cfg.typographer {
		exts = append(exts, extension.NewTypographer(
			extension.WithTypographicSubstitutions(unicodePunctuation),
		))
	}
	return &Tokenizer{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

var unicodePunctuation = map[extension.TypographicPunctuation][]byte{
	extension.LeftSingleQuote:  []byte("‘"),
	extension.RightSingleQuote: []byte("’"),
	extension.LeftDoubleQuote:  []byte("“"),
	extension.RightDoubleQuote: []byte("”"),
	extension.EnDash:           []byte("–"),
	extension.EmDash:           []byte("—"),
	extension.Ellipsis:         []byte("…"),
	extension.LeftAngleQuote:   []byte("«"),
	extension.RightAngleQuote:  []byte("»"),
	extension.Apostrophe:       []byte("’"),
}

// Tokenize parses src and returns its event stream. Adjacent text
// fragments are merged.
func (t *Tokenizer) Tokenize(src []byte) []event.Event {
	doc := t.md.Parser().Parse(text.NewReader(src))
	w := &walker{source: src}
	_ = ast.Walk(doc, w.visit)
	return mergeText(w.events)
}

type walker struct {
	source []byte
	events []event.Event

	// set right after a task checkbox so the separating space is dropped
	afterTask bool
}

func (w *walker) emit(ev event.Event) {
	w.events = append(w.events, ev)
	w.afterTask = false
}

// pair emits the Start of tag when entering and its End when leaving.
func (w *walker) pair(entering bool, tag event.Tag) {
	if entering {
		w.emit(event.Start(tag))
	} else {
		w.emit(event.End(tag.End()))
	}
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := n.(type) {
	case *ast.Paragraph:
		w.pair(entering, event.Tag{Kind: event.TagParagraph})
	case *ast.Heading:
		w.pair(entering, event.Tag{Kind: event.TagHeading, Level: n.Level})
	case *ast.Blockquote:
		w.pair(entering, event.Tag{Kind: event.TagBlockQuote})
	case *ast.List:
		tag := event.Tag{Kind: event.TagList, Ordered: n.IsOrdered()}
		if tag.Ordered && n.Start > 0 {
			tag.Start = uint64(n.Start)
		}
		w.pair(entering, tag)
	case *ast.ListItem:
		w.pair(entering, event.Tag{Kind: event.TagItem})
	case *ast.ThematicBreak:
		if entering {
			w.emit(event.Rule())
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			w.codeBlock(event.Tag{Kind: event.TagCodeBlock}, n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			tag := event.Tag{Kind: event.TagCodeBlock, Fenced: true}
			if n.Info != nil {
				tag.Info = string(n.Info.Segment.Value(w.source))
			}
			w.codeBlock(tag, n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.HTMLBlock:
		if entering {
			w.htmlBlock(n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.Text:
		if entering {
			w.text(n)
		}
	case *ast.String:
		if entering {
			w.emit(event.Text(string(n.Value)))
		}
	case *ast.CodeSpan:
		if entering {
			w.emit(event.Code(w.codeSpan(n)))
		}
		return ast.WalkSkipChildren, nil
	case *ast.Emphasis:
		kind := event.TagEmphasis
		if n.Level >= 2 {
			kind = event.TagStrong
		}
		w.pair(entering, event.Tag{Kind: kind})
	case *ast.Link:
		w.pair(entering, event.Tag{Kind: event.TagLink, Dest: unescape(n.Destination), Title: unescape(n.Title)})
	case *ast.Image:
		w.pair(entering, event.Tag{Kind: event.TagImage, Dest: unescape(n.Destination), Title: unescape(n.Title)})
	case *ast.AutoLink:
		if entering {
			w.autoLink(n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML:
		if entering {
			var sb strings.Builder
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				sb.Write(seg.Value(w.source))
			}
			w.emit(event.InlineHTML(sb.String()))
		}
		return ast.WalkSkipChildren, nil
	case *east.Strikethrough:
		w.pair(entering, event.Tag{Kind: event.TagStrikethrough})
	case *east.TaskCheckBox:
		if entering {
			w.emit(event.TaskListMarker(n.IsChecked))
			w.afterTask = true
		}
	case *east.Table:
		w.pair(entering, event.Tag{Kind: event.TagTable})
	case *east.TableHeader:
		w.pair(entering, event.Tag{Kind: event.TagTableHead})
	case *east.TableRow:
		w.pair(entering, event.Tag{Kind: event.TagTableRow})
	case *east.TableCell:
		w.pair(entering, event.Tag{Kind: event.TagTableCell})
	case *MathNode:
		if entering {
			if n.Display {
				w.emit(event.DisplayMath(string(n.Value)))
			} else {
				w.emit(event.InlineMath(string(n.Value)))
			}
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// codeBlock emits the whole block body as one literal fragment so the
// content survives byte for byte.
func (w *walker) codeBlock(tag event.Tag, n ast.Node) {
	w.emit(event.Start(tag))
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(w.source))
	}
	if sb.Len() > 0 {
		w.emit(event.Text(sb.String()))
	}
	w.emit(event.End(tag.End()))
}

func (w *walker) htmlBlock(n *ast.HTMLBlock) {
	tag := event.Tag{Kind: event.TagHTMLBlock}
	w.emit(event.Start(tag))
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		w.emit(event.HTML(string(line.Value(w.source))))
	}
	if n.HasClosure() {
		w.emit(event.HTML(string(n.ClosureLine.Value(w.source))))
	}
	w.emit(event.End(tag.End()))
}

func (w *walker) text(n *ast.Text) {
	raw := n.Segment.Value(w.source)
	value := string(raw)
	if !n.IsRaw() {
		value = unescape(raw)
	}
	if w.afterTask {
		value = strings.TrimLeft(value, " \t")
	}
	if value != "" {
		w.emit(event.Text(value))
	}
	switch {
	case n.HardLineBreak():
		w.emit(event.HardBreak())
	case n.SoftLineBreak():
		w.emit(event.SoftBreak())
	}
}

// codeSpan joins the raw fragments of a code span. Line endings inside a
// span read as spaces.
func (w *walker) codeSpan(n *ast.CodeSpan) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(w.source))
		case *ast.String:
			sb.Write(c.Value)
		}
	}
	return strings.ReplaceAll(sb.String(), "\n", " ")
}

func (w *walker) autoLink(n *ast.AutoLink) {
	dest := string(n.URL(w.source))
	if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
		dest = "mailto:" + dest
	}
	tag := event.Tag{Kind: event.TagLink, Dest: dest}
	w.emit(event.Start(tag))
	w.emit(event.Text(string(n.Label(w.source))))
	w.emit(event.End(tag.End()))
}

// mergeText collapses runs of adjacent Text events into one.
func mergeText(events []event.Event) []event.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.Kind == event.KindText && len(out) > 0 && out[len(out)-1].Kind == event.KindText {
			out[len(out)-1].Text += ev.Text
			continue
		}
		out = append(out, ev)
	}
	return out
}
