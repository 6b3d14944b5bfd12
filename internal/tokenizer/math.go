package tokenizer

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the goldmark node kind of MathNode.
var KindMath = ast.NewNodeKind("Math")

// MathNode is a $inline$ or $$display$$ math span.
type MathNode struct {
	ast.BaseInline
	Display bool
	Value   []byte
}

func (n *MathNode) Kind() ast.NodeKind { return KindMath }

func (n *MathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": fmt.Sprintf("%t", n.Display),
		"Value":   string(n.Value),
	}, nil)
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse reads one math span starting at the current '$'. A single dollar
// opens inline math, two open display math; the span closes on the same
// number of dollars. Inline math may not start or end with whitespace.
// Display math may run across lines.
func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	opener := 0
	for opener < len(line) && line[opener] == '$' {
		opener++
	}
	if opener > 2 || opener >= len(line) {
		return nil
	}
	display := opener == 2
	if !display && util.IsSpace(line[opener]) {
		return nil
	}

	l, pos := block.Position()
	block.Advance(opener)
	var value bytes.Buffer
	for {
		line, _ := block.PeekLine()
		if line == nil {
			block.SetPosition(l, pos)
			return nil
		}
		for i := 0; i < len(line); i++ {
			c := line[i]
			if c == '\\' && i+1 < len(line) && line[i+1] == '$' {
				i++
				continue
			}
			if c != '$' {
				continue
			}
			closer := 0
			for i+closer < len(line) && line[i+closer] == '$' {
				closer++
			}
			if closer == opener && (display || (i > 0 && !util.IsSpace(line[i-1]))) {
				value.Write(line[:i])
				if value.Len() == 0 {
					block.SetPosition(l, pos)
					return nil
				}
				block.Advance(i + closer)
				return &MathNode{Display: display, Value: value.Bytes()}
			}
			i += closer - 1
		}
		if !display {
			block.SetPosition(l, pos)
			return nil
		}
		value.Write(line)
		block.AdvanceLine()
	}
}

type mathExtension struct{}

// Math is a goldmark extension that adds math spans.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{}, 150),
	))
}
