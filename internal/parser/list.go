package parser

import (
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/event"
)

// list is the list builder. It runs until the End of a list with the
// same orderedness.
func (b *builder) list(ordered bool) ([]doctree.ListEntry, error) {
	if err := b.descend(); err != nil {
		return nil, err
	}
	defer b.ascend()

	end := event.ListEnd(ordered)
	var out []doctree.ListEntry
	for {
		ev, ok := b.next()
		if !ok {
			return out, nil
		}
		switch {
		case ev.Kind == event.KindEnd && ev.End == end:
			return out, nil
		case ev.Kind == event.KindStart && ev.Tag.Kind == event.TagList:
			nested, err := b.nestedList(ev.Tag)
			if err != nil {
				return nil, err
			}
			out = append(out, nested)
		case ev.Kind == event.KindStart && ev.Tag.Kind == event.TagItem:
			entries, err := b.item()
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		}
	}
}

func (b *builder) nestedList(tag event.Tag) (doctree.ListEntry, error) {
	items, err := b.list(tag.Ordered)
	if err != nil {
		return nil, err
	}
	if tag.Ordered {
		return doctree.NestedOrderedList{Start: tag.Start, Items: items}, nil
	}
	return doctree.NestedUnorderedList{Items: items}, nil
}

// item is the list-item builder. A list met inside the item body is built
// by the list builder, so its own item ends never close this item. Such
// lists are returned after the item as sibling entries.
func (b *builder) item() ([]doctree.ListEntry, error) {
	if err := b.descend(); err != nil {
		return nil, err
	}
	defer b.ascend()

	var it doctree.Item
	var nested []doctree.ListEntry
	for {
		ev, ok := b.next()
		if !ok {
			break
		}
		if ev.Kind == event.KindEnd {
			if ev.End.Kind == event.TagItem {
				break
			}
			continue
		}
		if ev.Kind == event.KindTaskListMarker {
			it.Checkbox = doctree.Bool(ev.Checked)
			continue
		}
		if ev.Kind == event.KindStart && ev.Tag.Kind == event.TagList {
			l, err := b.nestedList(ev.Tag)
			if err != nil {
				return nil, err
			}
			nested = append(nested, l)
			continue
		}
		in, err := b.inline(ev)
		if err != nil {
			return nil, err
		}
		if in != nil {
			it.Inlines = append(it.Inlines, in)
		}
	}
	return append([]doctree.ListEntry{it}, nested...), nil
}
