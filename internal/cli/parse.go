package cli

import (
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/spf13/cobra"
)

type parseResult struct {
	Blocks doctree.Document `json:"blocks"`
	Text   string           `json:"text,omitempty"`
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	var withText bool
	cmd := &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Parse Markdown into a document tree",
		Example: `  docmark parse README.md
  echo '# Title' | docmark parse -o json
  docmark parse notes.md -q '.blocks[] | select(.type == "heading")'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(inputArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := parser.Markdown(string(src), opts.parserOptions()...)
			if err != nil {
				return err
			}
			res := parseResult{Blocks: doc}
			if withText {
				res.Text = doctree.PlainText(doc)
			}
			return opts.printer(cmd).Print(res)
		},
	}
	cmd.Flags().BoolVar(&withText, "text", false, "include the plain-text rendering")
	return cmd
}
