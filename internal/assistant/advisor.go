// Package assistant produces lifestyle advice for patients. It calls an
// OpenAI-compatible chat endpoint when one is configured and falls back to
// rule-based stage guidance when the endpoint is absent or failing.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pulseguard-risk-server/internal/domain"
	"github.com/pulseguard-risk-server/internal/service"
)

// Config holds the advice backend settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Advice is the response returned to the API layer.
type Advice struct {
	Source          string   `json:"source"`
	Message         string   `json:"message"`
	Recommendations []string `json:"recommendations"`
}

// Advisor generates patient advice with a circuit-broken LLM backend.
type Advisor struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

// NewAdvisor creates an advisor. An empty BaseURL disables the LLM backend
// entirely and every request is answered by the rule-based fallback.
func NewAdvisor(config Config, logger *logrus.Logger) *Advisor {
	if config.Timeout <= 0 {
		config.Timeout = 20 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AdviceBackend",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Advisor{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker,
		log:        logger,
	}
}

// Advise answers a patient question in the context of their latest
// prediction. It never returns an error to the caller: when the backend is
// unavailable the rule-based guidance is served instead.
func (a *Advisor) Advise(ctx context.Context, question string, prediction *domain.PredictionResult) *Advice {
	if a.config.BaseURL == "" {
		return a.fallback(prediction)
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.queryBackend(ctx, question, prediction)
	})
	if err != nil {
		a.log.WithError(err).Warn("Advice backend unavailable, using rule-based fallback")
		return a.fallback(prediction)
	}

	return &Advice{
		Source:          "assistant",
		Message:         result.(string),
		Recommendations: service.RecommendationsForStage(prediction.Stage),
	}
}

// chat completion request/response shapes (OpenAI-compatible)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *Advisor) queryBackend(ctx context.Context, question string, prediction *domain.PredictionResult) (string, error) {
	prompt := fmt.Sprintf(
		"You are a hypertension care assistant. The patient's current classification is %s with a risk score of %.2f%%. "+
			"Answer the question briefly and practically. Question: %s",
		prediction.StageLabel, prediction.RiskScore, question,
	)

	body, err := json.Marshal(chatRequest{
		Model: a.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	url := strings.TrimSuffix(a.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling advice backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("advice backend returned %d: %s", resp.StatusCode, payload)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("advice backend returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func (a *Advisor) fallback(prediction *domain.PredictionResult) *Advice {
	return &Advice{
		Source: "rules",
		Message: fmt.Sprintf("Your current classification is %s with a risk score of %.2f%%. "+
			"Review the recommendations below and discuss them with your clinician.",
			prediction.StageLabel, prediction.RiskScore),
		Recommendations: service.RecommendationsForStage(prediction.Stage),
	}
}
