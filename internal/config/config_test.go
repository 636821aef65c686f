package config_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"noelserdna/cyber-cv-analyzer/internal/config"
)

// clearEnv blanks every variable Load reads so defaults are deterministic
// regardless of what the host environment carries.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "APP_VERSION", "API_KEYS",
		"AGENT_TRANSPORT", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_EMBED_MODEL",
		"GEMINI_MAX_TOKENS", "GEMINI_TEMPERATURE",
		"ANALYSIS_TIMEOUT_SECONDS", "CONCURRENT_REQUESTS_LIMIT", "MAX_FILE_SIZE_MB",
		"RETRY_MAX_ATTEMPTS", "RETRY_DELAYS", "RETRY_MAX_TOTAL_SECONDS",
		"UPLOAD_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"QDRANT_URL", "QDRANT_API_KEY", "QDRANT_COLLECTION",
		"INDEXER_CONCURRENCY", "METRICS_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	Convey("Given no environment overrides", t, func() {
		cfg := config.Load()

		Convey("Then every section carries its built-in default", func() {
			So(cfg.Server.Port, ShouldEqual, "8000")
			So(cfg.Server.Env, ShouldEqual, "development")
			So(cfg.Server.Version, ShouldEqual, "1.0.0")

			So(cfg.Auth.APIKeys, ShouldBeEmpty)

			So(cfg.Agent.Transport, ShouldEqual, "sdk")
			So(cfg.Agent.Model, ShouldEqual, "gemini-2.5-flash")
			So(cfg.Agent.EmbedModel, ShouldEqual, "text-embedding-004")
			So(cfg.Agent.MaxTokens, ShouldEqual, 8192)

			So(cfg.Analysis.Timeout, ShouldEqual, 30*time.Second)
			So(cfg.Analysis.MaxConcurrent, ShouldEqual, 10)
			So(cfg.Analysis.MaxFileSize, ShouldEqual, int64(10*1024*1024))

			So(cfg.Retry.MaxAttempts, ShouldEqual, 3)
			So(cfg.Retry.Delays, ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second})
			So(cfg.Retry.MaxElapsed, ShouldEqual, 30*time.Second)

			So(cfg.Storage.UploadPath, ShouldEqual, "./uploads")
			So(cfg.Qdrant.Collection, ShouldEqual, "cv_profiles")
			So(cfg.Indexer.Concurrency, ShouldEqual, 2)
			So(cfg.Metrics.Port, ShouldEqual, "9090")
		})
	})
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("API_KEYS", " key-one , key-two,")
	t.Setenv("AGENT_TRANSPORT", "rest")
	t.Setenv("GEMINI_MAX_TOKENS", "2048")
	t.Setenv("GEMINI_TEMPERATURE", "0.7")
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "90")
	t.Setenv("MAX_FILE_SIZE_MB", "25")
	t.Setenv("RETRY_DELAYS", "2s,3s")

	Convey("Given a fully overridden environment", t, func() {
		cfg := config.Load()

		Convey("Then the overrides win", func() {
			So(cfg.Server.Port, ShouldEqual, "9999")
			So(cfg.Agent.Transport, ShouldEqual, "rest")
			So(cfg.Agent.MaxTokens, ShouldEqual, 2048)
			So(cfg.Agent.Temperature, ShouldAlmostEqual, 0.7, 0.001)
			So(cfg.Analysis.Timeout, ShouldEqual, 90*time.Second)
			So(cfg.Analysis.MaxFileSize, ShouldEqual, int64(25*1024*1024))
			So(cfg.Retry.Delays, ShouldResemble, []time.Duration{2 * time.Second, 3 * time.Second})
		})

		Convey("Then API keys are split and trimmed", func() {
			So(cfg.Auth.APIKeys, ShouldResemble, []string{"key-one", "key-two"})
		})
	})
}

func TestLoadRejectsGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_MAX_TOKENS", "not-a-number")
	t.Setenv("RETRY_MAX_ATTEMPTS", "2.5")
	t.Setenv("RETRY_DELAYS", "fast,faster")

	Convey("Given unparseable numeric values", t, func() {
		cfg := config.Load()

		Convey("Then the defaults stand in", func() {
			So(cfg.Agent.MaxTokens, ShouldEqual, 8192)
			So(cfg.Retry.MaxAttempts, ShouldEqual, 3)
			So(cfg.Retry.Delays, ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second})
		})
	})
}

func TestLoadRejectsNonPositiveDelays(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRY_DELAYS", "1s,0s,4s")

	Convey("Given a delay list containing a zero", t, func() {
		cfg := config.Load()

		Convey("Then the whole list falls back to the default", func() {
			So(cfg.Retry.Delays, ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second})
		})
	})
}

func TestDatabaseDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "cv")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "cvdb")

	Convey("Given database settings from the environment", t, func() {
		cfg := config.Load()

		Convey("Then the DSN is assembled with sslmode disabled", func() {
			So(cfg.GetDatabaseDSN(), ShouldEqual,
				"host=db.internal port=5433 user=cv password=secret dbname=cvdb sslmode=disable")
		})
	})
}
