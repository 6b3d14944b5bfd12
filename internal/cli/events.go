package cli

import (
	"github.com/dgallion1/docmark/internal/event"
	"github.com/dgallion1/docmark/internal/tokenizer"
	"github.com/spf13/cobra"
)

// eventView is the printable form of one event. Only the fields that
// apply to the event's kind are set.
type eventView struct {
	Kind    string  `json:"kind"`
	Tag     string  `json:"tag,omitempty"`
	Level   int     `json:"level,omitempty"`
	Ordered bool    `json:"ordered,omitempty"`
	Start   *uint64 `json:"start,omitempty"`
	Fenced  bool    `json:"fenced,omitempty"`
	Info    string  `json:"info,omitempty"`
	Dest    string  `json:"dest,omitempty"`
	Title   string  `json:"title,omitempty"`
	Text    string  `json:"text,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

func viewEvent(e event.Event) eventView {
	v := eventView{Kind: e.Kind.String()}
	switch e.Kind {
	case event.KindStart:
		t := e.Tag
		v.Tag = t.Kind.String()
		v.Level = t.Level
		v.Fenced = t.Fenced
		v.Info = t.Info
		v.Dest = t.Dest
		v.Title = t.Title
		if t.Kind == event.TagList {
			v.Ordered = t.Ordered
			if t.Ordered {
				start := t.Start
				v.Start = &start
			}
		}
	case event.KindEnd:
		v.Tag = e.End.Kind.String()
		v.Level = e.End.Level
		v.Ordered = e.End.Ordered
	case event.KindTaskListMarker:
		checked := e.Checked
		v.Checked = &checked
	default:
		v.Text = e.Text
	}
	return v
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var noMath bool
	cmd := &cobra.Command{
		Use:   "events [FILE|-]",
		Short: "Print the flat event stream of a Markdown document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(inputArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			tok := tokenizer.New(
				tokenizer.WithTypographer(!opts.noSmart),
				tokenizer.WithMath(!noMath),
			)
			events := tok.Tokenize(src)
			views := make([]eventView, 0, len(events))
			for _, e := range events {
				views = append(views, viewEvent(e))
			}
			return opts.printer(cmd).Print(views)
		},
	}
	cmd.Flags().BoolVar(&noMath, "no-math", false, "treat $ delimiters as text")
	return cmd
}
