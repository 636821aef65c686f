package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// indexJobTimeout bounds a single embed+upsert cycle so a hung upstream call
// cannot wedge an indexer goroutine.
const indexJobTimeout = 30 * time.Second

// IndexJob carries what the profile index needs about one finished analysis.
type IndexJob struct {
	AnalysisID   string
	DetectedRole string
	TotalScore   float64
	Text         string
}

// Indexer embeds finished analyses and writes them to the profile index in
// the background. Enqueue never blocks the request path: a full queue drops
// the job, the analysis response is unaffected either way.
type Indexer interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(job IndexJob) bool
	QueueDepth() int
}

type indexer struct {
	gemini      GeminiService
	index       ProfileIndexService
	jobQueue    chan IndexJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewIndexer(gemini GeminiService, index ProfileIndexService, concurrency int) Indexer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &indexer{
		gemini:      gemini,
		index:       index,
		jobQueue:    make(chan IndexJob, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Indexer.
func (w *indexer) Start(ctx context.Context) {
	log.Printf("🚀 Starting profile indexer with %d workers", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Indexer.
func (w *indexer) Stop() {
	log.Println("🛑 Stopping profile indexer...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Profile indexer stopped")
}

// Enqueue implements Indexer. Returns false when the job was dropped.
func (w *indexer) Enqueue(job IndexJob) bool {
	select {
	case w.jobQueue <- job:
		return true
	default:
		log.Printf("⚠️  Index queue full, dropping job for analysis %s", job.AnalysisID)
		return false
	}
}

// QueueDepth implements Indexer. Read by the metrics gauge.
func (w *indexer) QueueDepth() int {
	return len(w.jobQueue)
}

func (w *indexer) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Indexer #%d stopped", workerID)
			return
		case job := <-w.jobQueue:
			w.process(ctx, workerID, job)
		}
	}
}

func (w *indexer) process(ctx context.Context, workerID int, job IndexJob) {
	jobCtx, cancel := context.WithTimeout(ctx, indexJobTimeout)
	defer cancel()

	embedding, err := w.gemini.GenerateEmbedding(jobCtx, job.Text)
	if err != nil {
		log.Printf("❌ Indexer #%d failed to embed analysis %s: %v", workerID, job.AnalysisID, err)
		return
	}

	if err := w.index.UpsertProfile(jobCtx, job.AnalysisID, job.DetectedRole, job.TotalScore, embedding); err != nil {
		log.Printf("❌ Indexer #%d failed to index analysis %s: %v", workerID, job.AnalysisID, err)
		return
	}

	log.Printf("✅ Indexer #%d indexed analysis %s", workerID, job.AnalysisID)
}
