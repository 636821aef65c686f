package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"noelserdna/cyber-cv-analyzer/internal/config"
)

func restTestConfig() config.AgentConfig {
	return config.AgentConfig{
		Transport:   "rest",
		APIKey:      "test-key",
		Model:       "eval-model",
		MaxTokens:   2048,
		Temperature: 0.4,
	}
}

func candidateResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(body)
}

func TestRESTAgentAnalyze(t *testing.T) {
	Convey("Given an upstream that answers normally", t, func() {
		var gotPath, gotKey, gotMethod string
		var gotBody generateContentRequest

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			gotPath = req.URL.Path
			gotKey = req.URL.Query().Get("key")
			gotMethod = req.Method
			_ = json.NewDecoder(req.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(candidateResponse(`{"ok":true}`)))
		}))
		defer srv.Close()

		agent := newRESTAgentService(restTestConfig(), srv.URL)

		Convey("Then the call shape matches the generateContent API", func() {
			text, err := agent.Analyze(context.Background(), "analyze this CV")
			So(err, ShouldBeNil)
			So(text, ShouldEqual, `{"ok":true}`)
			So(gotMethod, ShouldEqual, http.MethodPost)
			So(gotPath, ShouldEqual, "/models/eval-model:generateContent")
			So(gotKey, ShouldEqual, "test-key")
			So(gotBody.Contents, ShouldHaveLength, 1)
			So(gotBody.Contents[0].Parts[0].Text, ShouldEqual, "analyze this CV")
			So(gotBody.GenerationConfig.MaxOutputTokens, ShouldEqual, 2048)
		})
	})

	Convey("Given upstream failure statuses", t, func() {
		newFailingAgent := func(status int) AgentClient {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
			}))
			Reset(srv.Close)
			return newRESTAgentService(restTestConfig(), srv.URL)
		}

		Convey("Then 429 maps to the rate limit sentinel", func() {
			_, err := newFailingAgent(http.StatusTooManyRequests).Analyze(context.Background(), "p")
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
			So(IsRetryable(err), ShouldBeTrue)
		})

		Convey("And 503 maps to service unavailable", func() {
			_, err := newFailingAgent(http.StatusServiceUnavailable).Analyze(context.Background(), "p")
			So(errors.Is(err, ErrServiceUnavailable), ShouldBeTrue)
			So(IsRetryable(err), ShouldBeTrue)
		})

		Convey("And other 5xx map to a generic API failure", func() {
			_, err := newFailingAgent(http.StatusInternalServerError).Analyze(context.Background(), "p")
			So(errors.Is(err, ErrAPIFailure), ShouldBeTrue)
			So(IsRetryable(err), ShouldBeTrue)
		})

		Convey("And 4xx rejections are not retryable", func() {
			_, err := newFailingAgent(http.StatusBadRequest).Analyze(context.Background(), "p")
			So(errors.Is(err, ErrUpstreamRejected), ShouldBeTrue)
			So(IsRetryable(err), ShouldBeFalse)
		})
	})

	Convey("Given a 200 with no usable candidates", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		agent := newRESTAgentService(restTestConfig(), srv.URL)

		Convey("Then the response counts as an API failure", func() {
			_, err := agent.Analyze(context.Background(), "p")
			So(errors.Is(err, ErrAPIFailure), ShouldBeTrue)
		})
	})

	Convey("Given a 200 with an empty candidate text", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte(candidateResponse("")))
		}))
		defer srv.Close()

		agent := newRESTAgentService(restTestConfig(), srv.URL)

		Convey("Then the response counts as an API failure", func() {
			_, err := agent.Analyze(context.Background(), "p")
			So(errors.Is(err, ErrAPIFailure), ShouldBeTrue)
		})
	})

	Convey("Given a 200 with an unparseable body", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		}))
		defer srv.Close()

		agent := newRESTAgentService(restTestConfig(), srv.URL)

		Convey("Then the response counts as an API failure", func() {
			_, err := agent.Analyze(context.Background(), "p")
			So(errors.Is(err, ErrAPIFailure), ShouldBeTrue)
		})
	})

	Convey("Given an upstream slower than the request deadline", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(candidateResponse("late")))
		}))
		defer srv.Close()

		agent := newRESTAgentService(restTestConfig(), srv.URL)

		Convey("Then the context deadline surfaces, not an API failure", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()

			_, err := agent.Analyze(ctx, "p")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

func TestTruncateForLog(t *testing.T) {
	Convey("Given upstream bodies of both sizes", t, func() {
		Convey("Then short bodies pass through", func() {
			So(truncateForLog("short", 200), ShouldEqual, "short")
		})

		Convey("And long bodies are cut with an ellipsis", func() {
			long := make([]byte, 300)
			for i := range long {
				long[i] = 'x'
			}
			out := truncateForLog(string(long), 200)
			So(len(out), ShouldEqual, 203)
			So(out[200:], ShouldEqual, "...")
		})
	})
}
