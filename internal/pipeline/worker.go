package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgallion1/docdistill/internal/chunker"
	"github.com/dgallion1/docdistill/internal/document"
	"github.com/dgallion1/docdistill/internal/extract"
	"github.com/dgallion1/docdistill/internal/merge"
	"github.com/dgallion1/docdistill/internal/parser"
	"github.com/dgallion1/docdistill/internal/schema"
	"github.com/dgallion1/docdistill/internal/store"
)

// Artifact is the persisted result of a completed job. Exactly one of
// Knowledge or Quiz is set, matching Schema.
type Artifact struct {
	DocID    string      `json:"doc_id"`
	Title    string      `json:"title"`
	Filename string      `json:"filename"`
	Schema   schema.Kind `json:"schema"`

	Knowledge *schema.Knowledge `json:"knowledge,omitempty"`
	Quiz      []schema.QuizItem `json:"quiz,omitempty"`

	TotalChunks  int       `json:"total_chunks"`
	FailedChunks int       `json:"failed_chunks"`
	CreatedAt    time.Time `json:"created_at"`
}

// Worker processes a single document job.
type Worker struct {
	provider extract.Provider
	store    *store.Store
	log      *slog.Logger

	maxConcurrentExtract int
}

func NewWorker(provider extract.Provider, st *store.Store, log *slog.Logger, maxExtract int) *Worker {
	return &Worker{
		provider:             provider,
		store:                st,
		log:                  log,
		maxConcurrentExtract: maxExtract,
	}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "schema", job.Schema)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	} else {
		// Snapshot may read Title concurrently from a status poll.
		job.SetTitle(doc.Title)
	}

	if len(doc.Pages) == 0 {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Chunk. Knowledge runs walk pages; quiz runs walk words.
	job.SetStatus(StatusChunking, "chunking")
	var src document.Source = doc
	if job.Schema == schema.KindQuiz {
		src = document.SplitWords(doc.Text())
	}
	seq, err := chunker.Chunks(src, chunker.Config{Window: job.Window, Overlap: job.Overlap})
	if err != nil {
		log.Error("invalid chunk config", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	chunks := slices.Collect(seq)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks), "segments", src.Len())

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Extract one partial result per chunk, then merge.
	job.SetStatus(StatusExtracting, "extracting")

	artifact := Artifact{
		DocID:     job.DocID,
		Title:     doc.Title,
		Filename:  job.Filename,
		Schema:    job.Schema,
		CreatedAt: job.CreatedAt,
	}
	var records int
	switch job.Schema {
	case schema.KindQuiz:
		items, err := w.runQuiz(ctx, job, chunks, log)
		if err != nil {
			log.Error("extraction aborted", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "extracting")
			return
		}
		artifact.Quiz = items
		records = len(items)
	default:
		merged, err := w.runKnowledge(ctx, job, doc.Title, chunks, log)
		if err != nil {
			log.Error("extraction aborted", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "extracting")
			return
		}
		artifact.Knowledge = &merged
		records = merged.Count()
	}

	snap := job.Snapshot()
	artifact.TotalChunks = snap.Progress.TotalChunks
	artifact.FailedChunks = snap.Progress.FailedChunks
	job.SetRecords(records)
	log.Info("extraction complete", "records", records, "failed_chunks", snap.Progress.FailedChunks)

	if snap.Progress.FailedChunks == len(chunks) {
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 4: Persist the merged artifact.
	if err := w.store.Save(job.DocID, artifact); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if snap.Progress.FailedChunks > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// runKnowledge extracts each chunk against the knowledge schema and merges
// the partial results.
func (w *Worker) runKnowledge(ctx context.Context, job *Job, title string, chunks []chunker.Chunk, log *slog.Logger) (schema.Knowledge, error) {
	ex := extract.NewKnowledgeExtractor(w.provider)

	parts, _, err := Collect(ctx, chunks,
		func(ctx context.Context, chunk chunker.Chunk) (schema.Knowledge, error) {
			k, err := withRetry(ctx, log, chunk, func(ctx context.Context) (schema.Knowledge, error) {
				return ex.Extract(ctx, title, chunk.Start, chunk.End, chunk.Text)
			})
			w.recordChunk(job, log, chunk, err)
			return k, err
		},
		schema.EmptyKnowledge, w.maxConcurrentExtract)
	if err != nil {
		return schema.Knowledge{}, err
	}

	job.SetStatus(StatusMerging, "merging")
	return merge.Knowledge(parts), nil
}

// runQuiz generates quiz items per chunk and deduplicates across chunks.
func (w *Worker) runQuiz(ctx context.Context, job *Job, chunks []chunker.Chunk, log *slog.Logger) ([]schema.QuizItem, error) {
	gen := extract.NewQuizGenerator(w.provider, job.QuestionType, job.CharLimit)

	parts, _, err := Collect(ctx, chunks,
		func(ctx context.Context, chunk chunker.Chunk) ([]schema.QuizItem, error) {
			items, err := withRetry(ctx, log, chunk, func(ctx context.Context) ([]schema.QuizItem, error) {
				return gen.Generate(ctx, chunk.Text)
			})
			w.recordChunk(job, log, chunk, err)
			return items, err
		},
		func() []schema.QuizItem { return []schema.QuizItem{} }, w.maxConcurrentExtract)
	if err != nil {
		return nil, err
	}

	job.SetStatus(StatusMerging, "merging")
	return merge.Quiz(parts), nil
}

// withRetry runs call, retrying retryable provider errors with backoff.
func withRetry[T any](ctx context.Context, log *slog.Logger, chunk chunker.Chunk, call func(ctx context.Context) (T, error)) (T, error) {
	var res T
	var lastErr error
	for attempt := range MaxRetries {
		res, lastErr = call(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable extraction error", "chunk_start", chunk.Start, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
	return res, lastErr
}

// recordChunk updates job progress for one finished chunk.
func (w *Worker) recordChunk(job *Job, log *slog.Logger, chunk chunker.Chunk, err error) {
	job.IncrChunksProcessed()
	if err != nil {
		log.Error("extraction failed", "chunk_start", chunk.Start, "chunk_end", chunk.End, "error", err)
		job.AddError(fmt.Sprintf("chunk %d-%d: %s", chunk.Start, chunk.End, err))
		job.IncrFailedChunks()
	}
}
