// Package cli implements the docmark command line tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docmark/internal/parser"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	output   string
	query    string
	maxDepth int
	noSmart  bool

	format Format
}

// NewRootCmd builds the docmark command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "docmark",
		Short: "Turn Markdown into a typed document tree",
		Long: `docmark parses Markdown into a nested, typed document tree and
manages project containers whose entry memos are written in Markdown.

Output is YAML on a terminal and JSON otherwise unless --output is given.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			formatStr := opts.output
			if !cmd.Flags().Changed("output") && !isTerminal(cmd.OutOrStdout()) {
				formatStr = string(FormatJSON)
			}
			format, err := ParseFormat(formatStr)
			if err != nil {
				return err
			}
			if opts.query != "" && format != FormatJSON {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--query requires --output json")
				}
				format = FormatJSON
			}
			opts.format = format
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.output, "output", "o", string(FormatYAML), "output format (json|yaml)")
	pf.StringVarP(&opts.query, "query", "q", "", "jq expression applied to JSON output")
	pf.IntVar(&opts.maxDepth, "max-depth", parser.DefaultMaxDepth, "maximum nesting depth (0 disables the limit)")
	pf.BoolVar(&opts.noSmart, "no-smart", false, "disable smart punctuation")

	root.AddCommand(
		newParseCmd(opts),
		newEventsCmd(opts),
		newProjectCmd(opts),
	)
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}

func (o *rootOptions) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(cmd.OutOrStdout(), o.format, o.query)
}

func (o *rootOptions) parserOptions() []parser.Option {
	return []parser.Option{
		parser.WithMaxDepth(o.maxDepth),
		parser.WithSmartPunctuation(!o.noSmart),
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// readInput reads a file, or stdin when source is "-" or empty. The
// content is returned untouched.
func readInput(source string, stdin io.Reader) ([]byte, error) {
	if source == "" || source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return data, nil
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
