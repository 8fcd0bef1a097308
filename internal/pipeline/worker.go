package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/lexchunk/internal/metrics"
	"github.com/dgallion1/lexchunk/internal/source"
)

// Worker processes a single document job.
type Worker struct {
	proc    *Processor
	sink    Sink
	log     *slog.Logger
	srcOpts []source.Option

	backoff func(attempt int) time.Duration
}

func NewWorker(proc *Processor, sink Sink, log *slog.Logger, srcOpts ...source.Option) *Worker {
	return &Worker{
		proc:    proc,
		sink:    sink,
		log:     log,
		srcOpts: srcOpts,
		backoff: Backoff,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract text from the upload.
	job.SetStatus(StatusExtracting, "extracting")
	text, err := source.ExtractFile(bytes.NewReader(job.FileData()), job.Filename, w.srcOpts...)
	if err != nil {
		log.Error("text extraction failed", "error", err)
		w.fail(job, "extracting", fmt.Sprintf("extract: %s", err))
		return
	}
	job.releaseFileData()

	hash := ContentHashHex([]byte(text))
	job.SetContentHash(hash)

	// Phase 1.5: Dedup check.
	existing, found, err := w.sink.FindByHash(ctx, hash)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if found {
		log.Info("duplicate document, skipping", "existing_doc_id", existing)
		job.MarkDuplicate(existing)
		w.finish(job, StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Chunk.
	job.SetStatus(StatusChunking, "chunking")
	res := w.proc.Process(Document{ID: job.DocID, Text: text, Metadata: job.Metadata})
	job.SetResult(res)
	log = log.With("doc_id", res.DocID)
	log.Info("chunked document", "blocks", res.Blocks, "chunks", len(res.Chunks), "rejected", len(res.Rejections))

	if res.Blocks == 0 {
		log.Warn("no blocks produced")
		w.fail(job, "chunking", "no extractable content")
		return
	}

	// Phase 3: Store.
	job.SetStatus(StatusStoring, "storing")
	doc := StoredDocument{
		Info: DocumentInfo{
			DocID:         res.DocID,
			Filename:      job.Filename,
			ContentHash:   hash,
			Metadata:      res.Metadata,
			ChunkCount:    len(res.Chunks),
			RejectedCount: len(res.Rejections),
			CreatedAt:     job.CreatedAt,
		},
		Chunks:     res.Chunks,
		Rejections: res.Rejections,
	}
	if err := w.store(ctx, log, doc); err != nil {
		log.Error("store failed", "error", err)
		w.fail(job, "storing", fmt.Sprintf("store: %s", err))
		return
	}
	job.SetStored(len(res.Chunks))
	log.Info("storage complete", "stored", len(res.Chunks))

	w.finish(job, StatusCompleted, "done")
}

// store writes doc to the sink, retrying transient failures with backoff.
func (w *Worker) store(ctx context.Context, log *slog.Logger, doc StoredDocument) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.sink.StoreDocument(ctx, doc)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		metrics.SinkRetriesTotal.Inc()
		log.Warn("retryable store error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (w *Worker) fail(job *Job, phase, msg string) {
	job.AddError(msg)
	w.finish(job, StatusFailed, phase)
}

func (w *Worker) finish(job *Job, status JobStatus, phase string) {
	job.SetStatus(status, phase)
	metrics.JobsTotal.WithLabelValues(string(status)).Inc()
}
