package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docdistill/internal/chunker"
	"github.com/dgallion1/docdistill/internal/document"
	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/parser"
	"github.com/dgallion1/docdistill/internal/schema"
)

// RunOnceRequest describes a single synchronous extraction with no job
// registry or artifact store behind it.
type RunOnceRequest struct {
	Filename string
	Data     []byte
	Title    string

	Schema       schema.Kind
	QuestionType string
	CharLimit    int
	Window       int
	Overlap      int
	Parallel     int

	Provider extract.Provider
	Log      *slog.Logger
}

// RunOnceResult holds the merged output of a synchronous run.
type RunOnceResult struct {
	Title        string
	Knowledge    *schema.Knowledge
	Quiz         []schema.QuizItem
	TotalChunks  int
	FailedChunks int
}

// WriteJSON writes the merged payload as indented JSON.
func (r *RunOnceResult) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if r.Knowledge != nil {
		return enc.Encode(r.Knowledge)
	}
	return enc.Encode(r.Quiz)
}

// RunOnce parses, chunks, extracts, and merges in the calling goroutine,
// returning the merged result directly. Per-chunk failures degrade the output
// instead of aborting it; only cancellation and setup errors are fatal.
func RunOnce(ctx context.Context, req RunOnceRequest) (*RunOnceResult, error) {
	log := req.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	p, err := parser.ForFile(req.Filename)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(req.Data), req.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if req.Title != "" {
		doc.Title = req.Title
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no extractable content in %s", req.Filename)
	}

	var src document.Source = doc
	if req.Schema == schema.KindQuiz {
		src = document.SplitWords(doc.Text())
	}
	seq, err := chunker.Chunks(src, chunker.Config{Window: req.Window, Overlap: req.Overlap})
	if err != nil {
		return nil, err
	}
	chunks := slices.Collect(seq)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no extractable content in %s", req.Filename)
	}
	log.Info("chunked document", "chunks", len(chunks), "segments", src.Len())

	// Track progress through a transient job so the worker phases are shared
	// with the HTTP pipeline.
	now := time.Now()
	job := &Job{
		ID:           uuid.NewString(),
		Schema:       req.Schema,
		Status:       StatusExtracting,
		Filename:     req.Filename,
		Title:        doc.Title,
		QuestionType: req.QuestionType,
		CharLimit:    req.CharLimit,
		Window:       req.Window,
		Overlap:      req.Overlap,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	job.SetTotalChunks(len(chunks))

	w := NewWorker(req.Provider, nil, log, req.Parallel)
	result := &RunOnceResult{Title: doc.Title, TotalChunks: len(chunks)}
	switch req.Schema {
	case schema.KindQuiz:
		items, err := w.runQuiz(ctx, job, chunks, log)
		if err != nil {
			return nil, err
		}
		result.Quiz = items
	default:
		merged, err := w.runKnowledge(ctx, job, doc.Title, chunks, log)
		if err != nil {
			return nil, err
		}
		result.Knowledge = &merged
	}

	result.FailedChunks = job.Snapshot().Progress.FailedChunks
	return result, nil
}
