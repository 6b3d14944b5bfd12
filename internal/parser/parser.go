// Package parser rebuilds the nested document tree from the flat event
// stream produced by the tokenizer.
//
// The builders form a pushdown automaton whose stack is the call stack:
// a Start event enters a recursive call that watches for one terminator,
// and the matching End event returns from it. Malformed input never
// fails; it only changes the shape of the result. The one exception is
// the nesting depth guard.
package parser

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/event"
	"github.com/dgallion1/docmark/internal/tokenizer"
)

// DefaultMaxDepth bounds construct nesting unless overridden.
const DefaultMaxDepth = 128

// ErrTooDeep is matched by every DepthError.
var ErrTooDeep = errors.New("nesting depth limit exceeded")

// DepthError reports input nested deeper than the configured limit.
type DepthError struct {
	Limit  int
	Offset int // index of the event that crossed the limit
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("nesting depth limit %d exceeded at event %d", e.Limit, e.Offset)
}

func (e *DepthError) Unwrap() error { return ErrTooDeep }

// Option configures Build and Markdown.
type Option func(*options)

type options struct {
	maxDepth int
	smart    bool
}

// WithMaxDepth sets the nesting limit. Zero or less disables the guard.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithSmartPunctuation toggles typographic substitutions in Markdown.
// It has no effect on Build.
func WithSmartPunctuation(on bool) Option {
	return func(o *options) { o.smart = on }
}

func newOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth, smart: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var (
	smartTokenizer = tokenizer.New(tokenizer.WithTypographer(true))
	plainTokenizer = tokenizer.New()
)

// Markdown tokenizes text and builds its document tree.
func Markdown(text string, opts ...Option) (doctree.Document, error) {
	o := newOptions(opts)
	tok := plainTokenizer
	if o.smart {
		tok = smartTokenizer
	}
	return build(tok.Tokenize([]byte(text)), o)
}

// Build assembles the document tree for an event stream.
func Build(events []event.Event, opts ...Option) (doctree.Document, error) {
	return build(events, newOptions(opts))
}

func build(events []event.Event, o options) (doctree.Document, error) {
	b := &builder{events: events, maxDepth: o.maxDepth}
	blocks, err := b.blocks(nil)
	if err != nil {
		return nil, err
	}
	return doctree.Document(blocks), nil
}

// builder is a cursor over an immutable event slice. It lives for one
// Build call.
type builder struct {
	events   []event.Event
	pos      int
	depth    int
	maxDepth int
}

func (b *builder) next() (event.Event, bool) {
	if b.pos >= len(b.events) {
		return event.Event{}, false
	}
	ev := b.events[b.pos]
	b.pos++
	return ev, true
}

// descend is called on entry to every recursive builder; ascend undoes it.
func (b *builder) descend() error {
	b.depth++
	if b.maxDepth > 0 && b.depth > b.maxDepth {
		return &DepthError{Limit: b.maxDepth, Offset: b.pos - 1}
	}
	return nil
}

func (b *builder) ascend() {
	b.depth--
}
