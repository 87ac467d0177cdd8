package worker

import (
	"context"
	"log"
	"time"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
	"github.com/Thinkelution/slasher-tv-ai/internal/db"
	"github.com/Thinkelution/slasher-tv-ai/internal/models"
	"github.com/Thinkelution/slasher-tv-ai/internal/pipeline"
	"github.com/Thinkelution/slasher-tv-ai/internal/queue"
	"github.com/Thinkelution/slasher-tv-ai/internal/storage"
)

// Worker drains the Redis queues and runs the pipeline, recording progress in
// Postgres.
type Worker struct {
	db        *db.DB
	queue     *queue.Queue
	pipeline  *pipeline.Pipeline
	opts      pipeline.Options
	uploadSem chan struct{} // caps concurrent R2 uploads across all workers
}

func New(database *db.DB, q *queue.Queue, p *pipeline.Pipeline, opts pipeline.Options) *Worker {
	return &Worker{
		db:        database,
		queue:     q,
		pipeline:  p,
		opts:      opts,
		uploadSem: make(chan struct{}, 2),
	}
}

// Start begins processing jobs from both queues. Blocks until ctx is done.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueGenerateAssets, w.handleGenerateAssets)
		go w.processQueue(ctx, queue.QueueRenderVideo, w.handleRenderVideo)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}
			if job == nil {
				continue // no job available, retry
			}

			log.Printf("Processing job %s (type: %s, stock: %s)", job.ID, job.Type, job.Listing.StockNumber)

			if err := w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
				log.Printf("Failed to update job status: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				w.db.UpdateJobError(ctx, job.ID, err.Error())
			} else {
				log.Printf("Job %s completed successfully", job.ID)
			}
		}
	}
}

// handleGenerateAssets runs the pre-render stages, then chains the render job.
func (w *Worker) handleGenerateAssets(ctx context.Context, job *queue.Job) error {
	if _, err := w.pipeline.GenerateAssets(ctx, job.Listing, job.Style, w.opts); err != nil {
		return err
	}

	// Same job ID carries through both stages so the API exposes one status.
	return w.queue.EnqueueRenderVideo(ctx, job.ID, job.Listing, job.Style)
}

// handleRenderVideo composes the spot and records the outputs. The upload
// semaphore keeps renders from saturating the link to R2.
func (w *Worker) handleRenderVideo(ctx context.Context, job *queue.Job) error {
	opts := w.opts
	upload := opts.Upload && w.pipeline.Uploader != nil
	opts.Upload = false // upload is handled below under the semaphore

	res, err := w.pipeline.RenderVideo(ctx, job.Listing, job.Style, opts)
	if err != nil {
		return err
	}

	var remoteURL *string
	if upload {
		if err := w.uploadWithLimit(ctx, job.Listing.StockNumber, func() error {
			urls, err := w.pipeline.Uploader.UploadListingAssets(ctx, res.ListingDir, job.Listing.StockNumber)
			if err != nil {
				return err
			}
			if url, ok := urls[storage.ListingKey(job.Listing.StockNumber, "video.mp4")]; ok {
				remoteURL = &url
			}
			return nil
		}); err != nil {
			// Upload problems should not fail the render job
			log.Printf("[Upload] %s failed: %v", job.Listing.StockNumber, err)
		}
	}

	if remoteURL != nil {
		res.Metadata.RemoteVideoURL = *remoteURL
		if err := assets.WriteMetadata(res.ListingDir, res.Metadata); err != nil {
			log.Printf("Failed to refresh metadata for %s: %v", job.Listing.StockNumber, err)
		}
	}

	return w.db.CompleteJob(ctx, job.ID, res.Metadata.VideoPath, remoteURL)
}

// uploadWithLimit wraps an upload with the semaphore.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.uploadSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}
