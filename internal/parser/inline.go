package parser

import (
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/event"
)

// inlines is the inline builder. Only an End equal to end stops it;
// other End events are noise.
func (b *builder) inlines(end event.TagEnd) ([]doctree.Inline, error) {
	if err := b.descend(); err != nil {
		return nil, err
	}
	defer b.ascend()

	var out []doctree.Inline
	for {
		ev, ok := b.next()
		if !ok {
			return out, nil
		}
		if ev.Kind == event.KindEnd {
			if ev.End == end {
				return out, nil
			}
			continue
		}
		in, err := b.inline(ev)
		if err != nil {
			return nil, err
		}
		if in != nil {
			out = append(out, in)
		}
	}
}

// inline converts one inline-level event, consuming the rest of the span
// for Start events. Events without inline meaning yield nil.
func (b *builder) inline(ev event.Event) (doctree.Inline, error) {
	switch ev.Kind {
	case event.KindText, event.KindHTML, event.KindInlineHTML:
		return doctree.Text{Value: ev.Text}, nil
	case event.KindCode:
		return doctree.InlineCode{Value: ev.Text}, nil
	case event.KindInlineMath:
		return doctree.InlineMath{Value: ev.Text}, nil
	case event.KindDisplayMath:
		return doctree.DisplayMath{Value: ev.Text}, nil
	case event.KindHardBreak:
		return doctree.LineBreak{}, nil
	case event.KindStart:
		return b.span(ev.Tag)
	}
	return nil, nil
}

func (b *builder) span(tag event.Tag) (doctree.Inline, error) {
	switch tag.Kind {
	case event.TagEmphasis, event.TagStrong, event.TagStrikethrough, event.TagLink:
	case event.TagImage:
		return b.image(tag), nil
	default:
		return nil, nil
	}

	children, err := b.inlines(tag.End())
	if err != nil {
		return nil, err
	}
	switch tag.Kind {
	case event.TagEmphasis:
		return doctree.Emphasis{Children: children}, nil
	case event.TagStrong:
		return doctree.Strong{Children: children}, nil
	case event.TagStrikethrough:
		return doctree.Strike{Children: children}, nil
	default:
		return doctree.Link{Target: tag.Dest, Children: children}, nil
	}
}

// image keeps only the literal text of the description; formatting
// markers inside it are dropped, not parsed.
func (b *builder) image(tag event.Tag) doctree.Image {
	var alt strings.Builder
	for {
		ev, ok := b.next()
		if !ok {
			break
		}
		if ev.Kind == event.KindEnd && ev.End.Kind == event.TagImage {
			break
		}
		if ev.Kind == event.KindText {
			alt.WriteString(ev.Text)
		}
	}
	return doctree.Image{Target: tag.Dest, Alt: alt.String()}
}
