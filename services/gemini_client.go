package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"focargo/logger"
	"focargo/metrics"
	"focargo/models"

	"github.com/tidwall/gjson"
)

const (
	callClassify = "classify"
	callQuiz     = "quiz"
)

// Sampling settings per call site.
var (
	classifyTemperature = 0.1
	classifyTopK        = 40
	classifyTopP        = 0.95
	quizTemperature     = 0.7
)

type GeminiConfig struct {
	BaseURL string // e.g. https://generativelanguage.googleapis.com
	APIKey  string
	Model   string
}

// GeminiClient calls the generateContent REST endpoint.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client
	log        *logger.Logger
}

func NewGeminiClient(cfg GeminiConfig, httpClient *http.Client, log *logger.Logger) *GeminiClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiClient{cfg: cfg, httpClient: httpClient, log: log.With("service", "GeminiClient")}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopK             *int     `json:"topK,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

func (g *GeminiClient) Classify(ctx context.Context, img ImagePayload) (*models.ClassificationResult, error) {
	mime := img.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	req := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)}},
				{Text: ClassificationUserText},
			},
		}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: ClassificationSystemInstruction}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			Temperature:      &classifyTemperature,
			TopK:             &classifyTopK,
			TopP:             &classifyTopP,
		},
	}

	start := time.Now()
	text, err := g.generate(ctx, req)
	if err == nil {
		var result *models.ClassificationResult
		result, err = decodeStructured[models.ClassificationResult](text)
		if err == nil {
			g.observe(callClassify, start, nil)
			return result, nil
		}
	}
	g.observe(callClassify, start, err)
	return nil, err
}

func (g *GeminiClient) GenerateQuiz(ctx context.Context, prompt string) (*models.QuizData, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			Temperature:      &quizTemperature,
		},
	}

	start := time.Now()
	text, err := g.generate(ctx, req)
	if err == nil {
		var quiz *models.QuizData
		quiz, err = decodeStructured[models.QuizData](text)
		if err == nil {
			g.observe(callQuiz, start, nil)
			return quiz, nil
		}
	}
	g.observe(callQuiz, start, err)
	return nil, err
}

// generate posts req once and returns the concatenated text parts of the first candidate.
func (g *GeminiClient) generate(ctx context.Context, body geminiRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai service request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai service read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > 1024 {
			raw = raw[:1024]
		}
		return "", &GatewayHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var sb strings.Builder
	for _, part := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	return sb.String(), nil
}

func (g *GeminiClient) observe(call string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyResponse):
		outcome = "empty"
	case errors.Is(err, ErrMalformedResponse):
		outcome = "malformed"
	default:
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.RecordAIRequest(call, outcome, elapsed.Seconds())
	if err != nil {
		g.log.Warn("AI call failed", "call", call, "outcome", outcome, "elapsed", elapsed.String(), "error", err.Error())
		return
	}
	g.log.Debug("AI call done", "call", call, "elapsed", elapsed.String())
}
