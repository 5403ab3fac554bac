// Package clu is a focused client for the Azure Conversational Language
// Understanding analyze-conversations endpoint. It maps predictions into
// the domain recognition model and degrades cleanly when unconfigured.
package clu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flightdeck/adbot/pkg/domain"
)

const apiVersion = "2023-04-01"

// analyzeRequest is the request shape for analyze-conversations.
type analyzeRequest struct {
	Kind          string            `json:"kind"`
	AnalysisInput analysisInput     `json:"analysisInput"`
	Parameters    analyzeParameters `json:"parameters"`
}

type analysisInput struct {
	ConversationItem conversationItem `json:"conversationItem"`
}

type conversationItem struct {
	ID            string `json:"id"`
	ParticipantID string `json:"participantId"`
	Text          string `json:"text"`
}

type analyzeParameters struct {
	ProjectName    string `json:"projectName"`
	DeploymentName string `json:"deploymentName"`
	Verbose        bool   `json:"verbose"`
}

// analyzeResponse is the minimal response shape we consume.
type analyzeResponse struct {
	Result struct {
		Query      string `json:"query"`
		Prediction struct {
			TopIntent string `json:"topIntent"`
			Intents   []struct {
				Category        string  `json:"category"`
				ConfidenceScore float64 `json:"confidenceScore"`
			} `json:"intents"`
			Entities []struct {
				Category string `json:"category"`
				Text     string `json:"text"`
				Offset   int    `json:"offset"`
				Length   int    `json:"length"`
			} `json:"entities"`
		} `json:"prediction"`
	} `json:"result"`
}

// Client talks to a CLU deployment. A zero-configured client reports
// IsConfigured false and refuses to recognize, which callers use to fall
// back to manual slot collection.
type Client struct {
	endpoint   string
	apiKey     string
	project    string
	deployment string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a CLU client. Empty settings are allowed; the client then
// reports itself unconfigured instead of failing construction, so the
// bot can still run with recognition disabled.
func New(endpoint, apiKey, project, deployment string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		project:    strings.TrimSpace(project),
		deployment: strings.TrimSpace(deployment),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether every setting needed to call the service
// is present.
func (c *Client) IsConfigured() bool {
	return c.endpoint != "" && c.apiKey != "" && c.project != "" && c.deployment != ""
}

func (c *Client) analyzeURL() string {
	return c.endpoint + "/language/:analyze-conversations?api-version=" + apiVersion
}

// Recognize sends the utterance to the CLU deployment and maps the
// prediction. Transport failures and non-2xx statuses come back wrapped
// in domain.ErrRecognizerUnavailable; a 2xx response that does not parse
// is a domain.MalformedResponseError.
func (c *Client) Recognize(ctx context.Context, utterance string) (*domain.Recognition, error) {
	if !c.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}

	body, err := json.Marshal(analyzeRequest{
		Kind: "Conversation",
		AnalysisInput: analysisInput{
			ConversationItem: conversationItem{
				ID:            uuid.NewString(),
				ParticipantID: "user",
				Text:          utterance,
			},
		},
		Parameters: analyzeParameters{
			ProjectName:    c.project,
			DeploymentName: c.deployment,
			Verbose:        true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clu: marshal request: %w", err)
	}

	url := c.analyzeURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("clu: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecognizerUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("%w: status %d from %s: %s", domain.ErrRecognizerUnavailable, res.StatusCode, url, string(buf))
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrRecognizerUnavailable, err)
	}

	var payload analyzeResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &domain.MalformedResponseError{Body: string(raw), Err: err}
	}

	return mapRecognition(utterance, &payload), nil
}

// mapRecognition converts the service payload into the domain model,
// preserving the service's intent ordering so ties resolve the same way
// on every call.
func mapRecognition(utterance string, payload *analyzeResponse) *domain.Recognition {
	rec := &domain.Recognition{Text: utterance}
	if payload.Result.Query != "" {
		rec.Text = payload.Result.Query
	}
	for _, in := range payload.Result.Prediction.Intents {
		rec.Intents = append(rec.Intents, domain.IntentScore{
			Intent: domain.Intent(in.Category),
			Score:  in.ConfidenceScore,
		})
	}
	for _, en := range payload.Result.Prediction.Entities {
		rec.Entities = append(rec.Entities, domain.Entity{
			Category: en.Category,
			Text:     en.Text,
			Offset:   en.Offset,
			Length:   en.Length,
		})
	}
	return rec
}
