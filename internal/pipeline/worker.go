package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/project"
)

// EntryDocument is the parsed memo of one project entry.
type EntryDocument struct {
	Entry  int              `json:"entry"`
	Title  string           `json:"title"`
	Blocks doctree.Document `json:"blocks"`
	Text   string           `json:"text"`
	Error  string           `json:"error,omitempty"`
}

// WorkerOptions bound the work a single job may do.
type WorkerOptions struct {
	MaxConcurrentParse int
	MaxNestingDepth    int
	SmartPunctuation   bool
}

// Worker processes a single project import job.
type Worker struct {
	store *project.Store
	log   *slog.Logger
	opts  WorkerOptions
}

func NewWorker(store *project.Store, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.MaxConcurrentParse <= 0 {
		opts.MaxConcurrentParse = 1
	}
	return &Worker{store: store, log: log, opts: opts}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Decode
	job.SetStatus(StatusDecoding, "decoding")
	data := job.FileData()
	hash := ContentHashHex(data)
	job.SetContentHash(hash)

	if existing, ok := w.store.LookupHash(hash); ok {
		log.Info("duplicate project, skipping", "existing_project_id", existing)
		job.SetProject(existing, 0)
		job.SetStatus(StatusDupSkipped, "dedup")
		job.releaseFile()
		return
	}

	p, err := project.Decode(data)
	job.releaseFile()
	if err != nil {
		log.Error("decode failed", "error", err)
		job.AddError(fmt.Sprintf("decode: %s", err))
		job.SetStatus(StatusFailed, "decoding")
		return
	}
	job.SetProject(p.ID, len(p.Entries))
	log = log.With("project_id", p.ID)

	if err := w.store.Save(p); err != nil {
		log.Error("save failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "decoding")
		return
	}

	// Phase 2: Extract attachments
	job.SetStatus(StatusExtracting, "extracting")
	hadErrors := false
	atts, err := w.store.ExtractAttachments(p)
	job.SetAttachments(len(atts))
	if err != nil {
		log.Error("attachment extraction failed", "error", err)
		job.AddError(fmt.Sprintf("attachments: %s", err))
		hadErrors = true
	}
	for _, a := range atts {
		if a.Info.Error != "" {
			log.Warn("unreadable attachment", "name", a.Name, "error", a.Info.Error)
		}
	}

	// Phase 3: Parse memos with bounded concurrency.
	job.SetStatus(StatusParsing, "parsing")
	docs, parsed := w.parseEntries(ctx, job, p)
	for _, d := range docs {
		if d.Error != "" {
			hadErrors = true
		}
	}
	log.Info("parsing complete", "entries", len(docs), "parsed", parsed)

	if ctx.Err() != nil {
		job.AddError(fmt.Sprintf("cancelled: %s", ctx.Err()))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 4: Store documents and the dedup index.
	job.SetStatus(StatusStoring, "storing")
	encoded, err := json.Marshal(docs)
	if err == nil {
		err = w.store.SaveDocuments(p.ID, encoded)
	}
	if err != nil {
		log.Error("store documents failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	if err := w.store.IndexHash(hash, p.ID); err != nil {
		log.Warn("hash index write failed", "error", err)
	}

	if hadErrors && parsed > 0 {
		job.SetStatus(StatusPartial, "done")
	} else if hadErrors && len(p.Entries) > 0 {
		job.SetStatus(StatusFailed, "parsing")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// parseEntries parses every memo. A memo that fails is recorded on the
// job and in its EntryDocument; the others are unaffected. The second
// result is the number of memos parsed successfully.
func (w *Worker) parseEntries(ctx context.Context, job *Job, p *project.Project) ([]EntryDocument, int) {
	docs := make([]EntryDocument, len(p.Entries))
	opts := []parser.Option{
		parser.WithMaxDepth(w.opts.MaxNestingDepth),
		parser.WithSmartPunctuation(w.opts.SmartPunctuation),
	}

	type parseResult struct {
		idx int
		doc doctree.Document
		err error
	}
	results := make(chan parseResult, len(p.Entries))
	sem := make(chan struct{}, w.opts.MaxConcurrentParse)

	for i, e := range p.Entries {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results <- parseResult{idx: i, err: ctx.Err()}
			continue
		}
		go func(i int, memo string) {
			defer func() { <-sem }()
			doc, err := parser.Markdown(memo, opts...)
			results <- parseResult{idx: i, doc: doc, err: err}
		}(i, e.Memo)
	}

	parsed := 0
	for range p.Entries {
		r := <-results
		job.IncrEntriesParsed()
		d := EntryDocument{Entry: r.idx, Title: p.Entries[r.idx].Title}
		if r.err != nil {
			var depthErr *parser.DepthError
			if errors.As(r.err, &depthErr) {
				w.log.Warn("memo nested too deeply", "job_id", job.ID, "entry", r.idx, "limit", depthErr.Limit)
			}
			job.AddError(fmt.Sprintf("entry %d: %s", r.idx, r.err))
			d.Error = r.err.Error()
		} else {
			d.Blocks = r.doc
			d.Text = doctree.PlainText(r.doc)
			parsed++
		}
		docs[r.idx] = d
	}
	return docs, parsed
}
