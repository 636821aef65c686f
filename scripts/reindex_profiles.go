package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"noelserdna/cyber-cv-analyzer/internal/config"
	"noelserdna/cyber-cv-analyzer/internal/models"
	"noelserdna/cyber-cv-analyzer/internal/repositories"
	"noelserdna/cyber-cv-analyzer/internal/services"
)

const pageSize = 50

// Rebuilds the Qdrant profile index from the analyses table. Safe to run
// against a live index: points are keyed by analysis ID, so existing entries
// are overwritten in place.
func main() {
	log.Println("🚀 Rebuilding the profile index...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	analysisRepo := repositories.NewAnalysisRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Agent)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	profileIndex, err := services.NewProfileIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := profileIndex.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	successCount := 0
	failCount := 0

	for offset := 0; ; offset += pageSize {
		records, err := analysisRepo.FindPage(offset, pageSize)
		if err != nil {
			log.Fatalf("❌ Failed to read analyses at offset %d: %v", offset, err)
		}
		if len(records) == 0 {
			break
		}

		log.Printf("📄 Processing %d analyses (offset %d)", len(records), offset)

		for _, record := range records {
			var result models.CVAnalysisResult
			if err := json.Unmarshal([]byte(record.Result), &result); err != nil {
				log.Printf("   ❌ Analysis %s has an unreadable result, skipping: %v", record.ID, err)
				failCount++
				continue
			}

			embedding, err := geminiService.GenerateEmbedding(ctx, services.ProfileSignature(&result))
			if err != nil {
				log.Printf("   ❌ Failed to embed analysis %s: %v", record.ID, err)
				failCount++
				continue
			}

			if err := profileIndex.UpsertProfile(ctx, record.ID.String(), record.DetectedRole, record.TotalScore, embedding); err != nil {
				log.Printf("   ❌ Failed to index analysis %s: %v", record.ID, err)
				failCount++
				continue
			}

			successCount++
			if successCount%10 == 0 {
				log.Printf("   📊 Progress: %d profiles indexed", successCount)
			}
		}
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("📊 Reindex summary: ✅ %d indexed, ❌ %d failed", successCount, failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
	log.Println("✅ Profile index rebuilt")
}
