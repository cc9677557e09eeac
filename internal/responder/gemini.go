package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/Pab1o16/turing-chat/internal/errors"
	"github.com/Pab1o16/turing-chat/internal/model"
)

const (
	// NoResponseText is returned when the model answers without any text.
	NoResponseText = "(no response)"

	maxErrorBodyBytes = 4 << 10

	apiKeyHeader = "x-goog-api-key"
)

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini responder. A zero timeout leaves requests
// bounded only by the caller's context.
func NewGemini(apiKey, modelName, baseURL string, timeout time.Duration) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   modelName,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *Gemini) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func buildGenerateRequest(prompt string, history []model.Message, systemPrompt string) generateRequest {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, m := range history {
		role := "model"
		if m.Role == model.RoleUser {
			role = "user"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	req := generateRequest{Contents: contents}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	return req
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *Gemini) Respond(ctx context.Context, prompt string, history []model.Message, systemPrompt string) (string, error) {
	body, err := json.Marshal(buildGenerateRequest(prompt, history, systemPrompt))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, g.apiKey)

	resp, err := g.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().
			Err(err).
			Str("model", g.model).
			Dur("elapsed", elapsed).
			Msg("gemini request error")
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "Model request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		log.Error().
			Str("model", g.model).
			Int("status", resp.StatusCode).
			Str("body", string(raw)).
			Dur("elapsed", elapsed).
			Msg("gemini request failed")
		// The upstream body stays in the log; clients only see the status.
		return "", apperrors.Internal(fmt.Sprintf("Gemini error %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "Model response unreadable", err)
	}

	log.Debug().
		Str("model", g.model).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("gemini request successful")

	return firstCandidateText(parsed), nil
}

func firstCandidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return NoResponseText
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return NoResponseText
	}
	return text
}
