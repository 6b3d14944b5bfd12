package parser

import (
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/event"
)

// blocks is the block driver. It runs until the stream is exhausted or,
// when end is non-nil, until that terminator is consumed.
func (b *builder) blocks(end *event.TagEnd) ([]doctree.Block, error) {
	var out []doctree.Block
	for {
		ev, ok := b.next()
		if !ok {
			return out, nil
		}
		switch ev.Kind {
		case event.KindEnd:
			if end != nil && ev.End == *end {
				return out, nil
			}
		case event.KindRule:
			out = append(out, doctree.Rule{})
		case event.KindStart:
			blk, err := b.block(ev.Tag)
			if err != nil {
				return nil, err
			}
			if blk != nil {
				out = append(out, blk)
			}
		}
	}
}

// block builds the construct opened by tag. Tags with no block meaning
// yield nil and leave their contents to the driver.
func (b *builder) block(tag event.Tag) (doctree.Block, error) {
	switch tag.Kind {
	case event.TagParagraph, event.TagHTMLBlock:
		in, err := b.inlines(tag.End())
		if err != nil {
			return nil, err
		}
		return doctree.Paragraph{Inlines: in}, nil

	case event.TagHeading:
		in, err := b.inlines(tag.End())
		if err != nil {
			return nil, err
		}
		return doctree.Heading{Level: tag.Level, Inlines: in}, nil

	case event.TagBlockQuote:
		if err := b.descend(); err != nil {
			return nil, err
		}
		end := tag.End()
		children, err := b.blocks(&end)
		b.ascend()
		if err != nil {
			return nil, err
		}
		return doctree.Quote{Children: children}, nil

	case event.TagCodeBlock:
		return b.codeBlock(tag), nil

	case event.TagList:
		items, err := b.list(tag.Ordered)
		if err != nil {
			return nil, err
		}
		if tag.Ordered {
			return doctree.OrderedList{Start: tag.Start, Items: items}, nil
		}
		return doctree.UnorderedList{Items: items}, nil
	}
	return nil, nil
}

// codeBlock concatenates every literal fragment up to the code block end.
func (b *builder) codeBlock(tag event.Tag) doctree.CodeBlock {
	var lang *string
	if tag.Fenced {
		lang = doctree.String(tag.Info)
	}
	var code strings.Builder
	for {
		ev, ok := b.next()
		if !ok {
			break
		}
		if ev.Kind == event.KindEnd && ev.End.Kind == event.TagCodeBlock {
			break
		}
		if ev.Kind == event.KindText || ev.Kind == event.KindCode {
			code.WriteString(ev.Text)
		}
	}
	return doctree.CodeBlock{Lang: lang, Code: code.String()}
}
