package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
)

type parseRequest struct {
	Text string `json:"text"`
	// Smart overrides the server's smart punctuation default when set.
	Smart *bool `json:"smart,omitempty"`
}

type parseResponse struct {
	Blocks doctree.Document `json:"blocks"`
	Text   string           `json:"text"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	smart := s.cfg.SmartPunctuation
	if req.Smart != nil {
		smart = *req.Smart
	}
	doc, err := parser.Markdown(req.Text,
		parser.WithMaxDepth(s.cfg.MaxNestingDepth),
		parser.WithSmartPunctuation(smart),
	)
	if errors.Is(err, parser.ErrTooDeep) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(parseResponse{Blocks: doc, Text: doctree.PlainText(doc)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth":       s.orchestrator.QueueDepth(),
		"max_queue_size":    s.cfg.MaxQueueSize,
		"workers":           s.cfg.WorkerCount,
		"max_nesting_depth": s.cfg.MaxNestingDepth,
		"smart_punctuation": s.cfg.SmartPunctuation,
	})
}
