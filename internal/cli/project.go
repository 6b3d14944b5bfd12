package cli

import (
	"fmt"
	"os"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Work with project containers",
	}
	cmd.AddCommand(
		newProjectInfoCmd(opts),
		newProjectMemosCmd(opts),
		newProjectMigrateCmd(),
		newProjectExtractCmd(opts),
	)
	return cmd
}

func loadProject(cmd *cobra.Command, source string) (*project.Project, error) {
	data, err := readInput(source, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return project.Decode(data)
}

type entrySummary struct {
	Index       int                  `json:"index"`
	Title       string               `json:"title"`
	BookName    string               `json:"book_name,omitempty"`
	BookAuthor  string               `json:"book_author,omitempty"`
	Keywords    []string             `json:"keywords,omitempty"`
	TextFiles   int                  `json:"text_files"`
	Attachments []project.Attachment `json:"attachments,omitempty"`
}

func newProjectInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info [FILE|-]",
		Short: "Summarize a project container",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, inputArg(args))
			if err != nil {
				return err
			}
			entries := make([]entrySummary, 0, len(p.Entries))
			for i, e := range p.Entries {
				s := entrySummary{
					Index:      i,
					Title:      e.Title,
					BookName:   e.BookName,
					BookAuthor: e.BookAuthor,
					Keywords:   e.Keywords,
					TextFiles:  len(e.TextFiles),
				}
				for _, f := range e.BinaryFiles {
					s.Attachments = append(s.Attachments, project.Attachment{
						Name:  project.AttachmentName(i, f.FileName),
						Entry: i,
						Info:  project.Inspect(f),
					})
				}
				entries = append(entries, s)
			}
			return opts.printer(cmd).Print(map[string]any{
				"id":             p.ID,
				"format_version": p.FormatVersion,
				"entries":        entries,
			})
		},
	}
}

type memoDocument struct {
	Entry  int              `json:"entry"`
	Title  string           `json:"title"`
	Blocks doctree.Document `json:"blocks"`
	Error  string           `json:"error,omitempty"`
}

func newProjectMemosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "memos [FILE|-]",
		Short: "Parse the Markdown memo of every entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, inputArg(args))
			if err != nil {
				return err
			}
			docs := make([]memoDocument, 0, len(p.Entries))
			for i, e := range p.Entries {
				d := memoDocument{Entry: i, Title: e.Title}
				doc, err := parser.Markdown(e.Memo, opts.parserOptions()...)
				if err != nil {
					d.Error = err.Error()
				} else {
					d.Blocks = doc
				}
				docs = append(docs, d)
			}
			return opts.printer(cmd).Print(docs)
		},
	}
}

func newProjectMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate IN [OUT]",
		Short: "Rewrite a container at the current format version",
		Long: `Reads a container of any supported format version and writes it at the
current version. Without OUT the result goes to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := project.Encode(p)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			return nil
		},
	}
}

func newProjectExtractCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "extract [FILE|-]",
		Short: "Write every binary file of a container to a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, inputArg(args))
			if err != nil {
				return err
			}
			atts, err := project.ExtractTo(dir, p)
			if err != nil {
				return err
			}
			if atts == nil {
				atts = []project.Attachment{}
			}
			return opts.printer(cmd).Print(atts)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	return cmd
}
