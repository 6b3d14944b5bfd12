package doctree

import "encoding/json"

// Every node marshals as an object whose "type" field names its kind.
// Child sequences are always arrays, never null.

func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(blocks(d))
}

func (p Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string   `json:"type"`
		Inlines []Inline `json:"inlines"`
	}{"paragraph", inlines(p.Inlines)})
}

func (Rule) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"rule"}`), nil
}

func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string   `json:"type"`
		Level   int      `json:"level"`
		Inlines []Inline `json:"inlines"`
	}{"heading", h.Level, inlines(h.Inlines)})
}

func (c CodeBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string  `json:"type"`
		Lang *string `json:"lang"`
		Code string  `json:"code"`
	}{"code_block", c.Lang, c.Code})
}

func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string  `json:"type"`
		Children []Block `json:"children"`
	}{"quote", blocks(q.Children)})
}

func (l OrderedList) MarshalJSON() ([]byte, error) {
	return marshalOrdered(l.Start, l.Items)
}

func (l UnorderedList) MarshalJSON() ([]byte, error) {
	return marshalUnordered(l.Items)
}

func (l NestedOrderedList) MarshalJSON() ([]byte, error) {
	return marshalOrdered(l.Start, l.Items)
}

func (l NestedUnorderedList) MarshalJSON() ([]byte, error) {
	return marshalUnordered(l.Items)
}

func marshalOrdered(start uint64, items []ListEntry) ([]byte, error) {
	return json.Marshal(struct {
		Type  string      `json:"type"`
		Start uint64      `json:"start"`
		Items []ListEntry `json:"items"`
	}{"ordered_list", start, entries(items)})
}

func marshalUnordered(items []ListEntry) ([]byte, error) {
	return json.Marshal(struct {
		Type  string      `json:"type"`
		Items []ListEntry `json:"items"`
	}{"unordered_list", entries(items)})
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string   `json:"type"`
		Checkbox *bool    `json:"checkbox"`
		Inlines  []Inline `json:"inlines"`
	}{"item", i.Checkbox, inlines(i.Inlines)})
}

func (t Text) MarshalJSON() ([]byte, error)        { return marshalValue("text", t.Value) }
func (c InlineCode) MarshalJSON() ([]byte, error)  { return marshalValue("inline_code", c.Value) }
func (m InlineMath) MarshalJSON() ([]byte, error)  { return marshalValue("inline_math", m.Value) }
func (m DisplayMath) MarshalJSON() ([]byte, error) { return marshalValue("display_math", m.Value) }

func marshalValue(kind, value string) ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{kind, value})
}

func (e Emphasis) MarshalJSON() ([]byte, error) { return marshalSpan("emphasis", e.Children) }
func (s Strong) MarshalJSON() ([]byte, error)   { return marshalSpan("strong", s.Children) }
func (s Strike) MarshalJSON() ([]byte, error)   { return marshalSpan("strike", s.Children) }

func marshalSpan(kind string, children []Inline) ([]byte, error) {
	return json.Marshal(struct {
		Type     string   `json:"type"`
		Children []Inline `json:"children"`
	}{kind, inlines(children)})
}

func (LineBreak) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"br"}`), nil
}

func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string   `json:"type"`
		Target   string   `json:"target"`
		Children []Inline `json:"children"`
	}{"link", l.Target, inlines(l.Children)})
}

func (i Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Target string `json:"target"`
		Alt    string `json:"alt"`
	}{"image", i.Target, i.Alt})
}

func blocks(v []Block) []Block {
	if v == nil {
		return []Block{}
	}
	return v
}

func entries(v []ListEntry) []ListEntry {
	if v == nil {
		return []ListEntry{}
	}
	return v
}

func inlines(v []Inline) []Inline {
	if v == nil {
		return []Inline{}
	}
	return v
}
