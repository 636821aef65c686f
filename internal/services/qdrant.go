package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"noelserdna/cyber-cv-analyzer/internal/models"
)

// ProfileIndexService is the vector index over analyzed profiles. Points are
// keyed by analysis ID, so reindexing the same analysis overwrites in place.
// Payloads carry only derived fields, never CV text.
type ProfileIndexService interface {
	InitCollection(ctx context.Context) error
	UpsertProfile(ctx context.Context, analysisID, detectedRole string, totalScore float64, embedding []float32) error
	SearchProfiles(ctx context.Context, queryEmbedding []float32, excludeID string, limit int) ([]models.SimilarProfile, error)
	DeleteProfile(ctx context.Context, analysisID string) error
}

type profileIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewProfileIndexService(urlStr, apiKey, collectionName string) (ProfileIndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the 6333 REST one.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &profileIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements ProfileIndexService.
func (q *profileIndexService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created", q.collectionName)
	return nil
}

// UpsertProfile implements ProfileIndexService.
func (q *profileIndexService) UpsertProfile(ctx context.Context, analysisID, detectedRole string, totalScore float64, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(analysisID),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"analysis_id":   analysisID,
			"detected_role": detectedRole,
			"total_score":   totalScore,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert profile point: %w", err)
	}

	return nil
}

// SearchProfiles implements ProfileIndexService. excludeID keeps the queried
// profile out of its own result list.
func (q *profileIndexService) SearchProfiles(ctx context.Context, queryEmbedding []float32, excludeID string, limit int) ([]models.SimilarProfile, error) {
	var filter *qdrant.Filter
	if excludeID != "" {
		filter = &qdrant.Filter{
			MustNot: []*qdrant.Condition{
				qdrant.NewMatch("analysis_id", excludeID),
			},
		}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	results := make([]models.SimilarProfile, 0, len(searchResult))
	for _, point := range searchResult {
		profile := models.SimilarProfile{
			Score: point.Score,
		}

		if v, ok := point.Payload["analysis_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				profile.AnalysisID = val.StringValue
			}
		}
		if v, ok := point.Payload["detected_role"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				profile.DetectedRole = val.StringValue
			}
		}
		if v, ok := point.Payload["total_score"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_DoubleValue); ok {
				profile.TotalScore = val.DoubleValue
			}
		}

		results = append(results, profile)
	}

	return results, nil
}

// DeleteProfile implements ProfileIndexService.
func (q *profileIndexService) DeleteProfile(ctx context.Context, analysisID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("analysis_id", analysisID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	return nil
}
