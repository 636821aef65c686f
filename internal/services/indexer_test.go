package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

type stubEmbedder struct {
	mu        sync.Mutex
	texts     []string
	embedding []float32
	err       error
	called    chan struct{}
}

func (s *stubEmbedder) Analyze(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.texts = append(s.texts, text)
	s.mu.Unlock()
	if s.called != nil {
		s.called <- struct{}{}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

type upsertCall struct {
	analysisID   string
	detectedRole string
	totalScore   float64
	embedding    []float32
}

type stubIndex struct {
	mu      sync.Mutex
	upserts []upsertCall
	done    chan struct{}
}

func (s *stubIndex) InitCollection(ctx context.Context) error { return nil }

func (s *stubIndex) UpsertProfile(ctx context.Context, analysisID, detectedRole string, totalScore float64, embedding []float32) error {
	s.mu.Lock()
	s.upserts = append(s.upserts, upsertCall{analysisID, detectedRole, totalScore, embedding})
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	return nil
}

func (s *stubIndex) SearchProfiles(ctx context.Context, queryEmbedding []float32, excludeID string, limit int) ([]models.SimilarProfile, error) {
	return nil, nil
}

func (s *stubIndex) DeleteProfile(ctx context.Context, analysisID string) error { return nil }

func waitSignals(ch chan struct{}, n int, timeout time.Duration) bool {
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(timeout):
			return false
		}
	}
	return true
}

func TestIndexerLifecycle(t *testing.T) {
	Convey("Given a running indexer", t, func() {
		embedder := &stubEmbedder{embedding: []float32{0.1, 0.2, 0.3}}
		index := &stubIndex{done: make(chan struct{}, 10)}
		idx := NewIndexer(embedder, index, 2)

		idx.Start(context.Background())
		Reset(idx.Stop)

		Convey("When jobs are enqueued", func() {
			for i := 0; i < 3; i++ {
				ok := idx.Enqueue(IndexJob{
					AnalysisID:   fmt.Sprintf("analysis-%d", i),
					DetectedRole: "Security Analyst",
					TotalScore:   7.5,
					Text:         fmt.Sprintf("role: Security Analyst %d", i),
				})
				So(ok, ShouldBeTrue)
			}

			Convey("Then every job is embedded and upserted", func() {
				So(waitSignals(index.done, 3, 2*time.Second), ShouldBeTrue)

				index.mu.Lock()
				defer index.mu.Unlock()
				So(index.upserts, ShouldHaveLength, 3)
				for _, call := range index.upserts {
					So(call.detectedRole, ShouldEqual, "Security Analyst")
					So(call.totalScore, ShouldEqual, 7.5)
					So(call.embedding, ShouldResemble, []float32{0.1, 0.2, 0.3})
				}
			})
		})
	})

	Convey("Given an embedder that fails", t, func() {
		embedder := &stubEmbedder{err: errors.New("quota exhausted"), called: make(chan struct{}, 1)}
		index := &stubIndex{}
		idx := NewIndexer(embedder, index, 1)

		idx.Start(context.Background())

		Convey("When a job is processed", func() {
			So(idx.Enqueue(IndexJob{AnalysisID: "analysis-x", Text: "sig"}), ShouldBeTrue)
			So(waitSignals(embedder.called, 1, 2*time.Second), ShouldBeTrue)
			idx.Stop()

			Convey("Then nothing reaches the index and the worker survives", func() {
				index.mu.Lock()
				defer index.mu.Unlock()
				So(index.upserts, ShouldBeEmpty)
			})
		})
	})
}

func TestIndexerQueue(t *testing.T) {
	Convey("Given an indexer that has not been started", t, func() {
		embedder := &stubEmbedder{embedding: []float32{0.5}}
		index := &stubIndex{}
		idx := NewIndexer(embedder, index, 1)

		Convey("When the queue fills up", func() {
			accepted := 0
			for i := 0; i < 100; i++ {
				if idx.Enqueue(IndexJob{AnalysisID: fmt.Sprintf("a-%d", i)}) {
					accepted++
				}
			}

			Convey("Then capacity is honored and the overflow job is dropped", func() {
				So(accepted, ShouldEqual, 100)
				So(idx.QueueDepth(), ShouldEqual, 100)
				So(idx.Enqueue(IndexJob{AnalysisID: "overflow"}), ShouldBeFalse)
			})
		})
	})
}
