package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"focargo/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const classificationJSON = `{
  "material": "Garrafa PET",
  "category": "Plástico Reciclável",
  "bin_color": "Vermelho",
  "recyclable": true,
  "environmental_impact": {"co2_saved_kg": "0.15", "energy_saved": "x", "recycling_time": "y", "water_saved": null},
  "ecoins_earned": 20,
  "tips": ["lave", "amasse"],
  "confidence_score": 92
}`

func geminiEnvelope(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(GeminiConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}, srv.Client(), logger.Nop())
}

func TestCleanResponseText(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanResponseText("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanResponseText("```\n{\"a\":1}```  "))
	assert.Equal(t, `{"a":1}`, CleanResponseText(`  {"a":1}`))
	assert.Equal(t, "", CleanResponseText("```json\n```"))
}

func TestGeminiClient_Classify(t *testing.T) {
	var body []byte
	gw := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, geminiEnvelope("```json\n"+classificationJSON+"\n```"))
	})

	res, err := gw.Classify(context.Background(), ImagePayload{MimeType: "image/png", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "Garrafa PET", res.Material)
	assert.Equal(t, "Plástico Reciclável", res.Category)
	assert.Equal(t, 20, res.EcoinsEarned)
	assert.Equal(t, 92, res.ConfidenceScore)
	assert.Nil(t, res.EnvironmentalImpact.WaterSaved)

	req := gjson.ParseBytes(body)
	assert.Equal(t, 0.1, req.Get("generationConfig.temperature").Float())
	assert.Equal(t, int64(40), req.Get("generationConfig.topK").Int())
	assert.Equal(t, 0.95, req.Get("generationConfig.topP").Float())
	assert.Equal(t, "application/json", req.Get("generationConfig.responseMimeType").String())
	assert.Equal(t, "image/png", req.Get("contents.0.parts.0.inlineData.mimeType").String())
	assert.Equal(t, "AQID", req.Get("contents.0.parts.0.inlineData.data").String())
	assert.Equal(t, ClassificationUserText, req.Get("contents.0.parts.1.text").String())
	assert.Equal(t, ClassificationSystemInstruction, req.Get("systemInstruction.parts.0.text").String())
}

func TestGeminiClient_GenerateQuiz(t *testing.T) {
	quizJSON := `{"question":"Q?","difficulty":"beginner","options":[{"id":"A","text":"a"},{"id":"B","text":"b","is_correct":true}],"correct_answer_id":"B","ecoins_reward":25,"material_category":"plastic"}`
	var body []byte
	gw := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, geminiEnvelope(quizJSON))
	})

	q, err := gw.GenerateQuiz(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "B", q.CorrectAnswerID)
	assert.Len(t, q.Options, 2)
	assert.Equal(t, 25, q.EcoinsReward)

	req := gjson.ParseBytes(body)
	assert.Equal(t, 0.7, req.Get("generationConfig.temperature").Float())
	assert.Equal(t, "prompt text", req.Get("contents.0.parts.0.text").String())
	assert.False(t, req.Get("systemInstruction").Exists())
	assert.False(t, req.Get("generationConfig.topK").Exists())
}

func TestGeminiClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "no candidates",
			status:  http.StatusOK,
			payload: `{"candidates":[]}`,
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyResponse) },
		},
		{
			name:    "fenced nothing",
			status:  http.StatusOK,
			payload: geminiEnvelope("```json\n```"),
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyResponse) },
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			payload: geminiEnvelope("desculpe, não consegui"),
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMalformedResponse) },
		},
		{
			name:    "fails validation",
			status:  http.StatusOK,
			payload: geminiEnvelope(`{"material":"","confidence_score":500}`),
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMalformedResponse) },
		},
		{
			name:    "http error",
			status:  http.StatusTooManyRequests,
			payload: `{"error":{"message":"quota"}}`,
			check: func(t *testing.T, err error) {
				var httpErr *GatewayHTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
				assert.Contains(t, httpErr.Body, "quota")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			gw := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.payload)
			})
			res, err := gw.Classify(context.Background(), ImagePayload{Data: []byte("img")})
			assert.Nil(t, res)
			tt.check(t, err)
			assert.Equal(t, 1, calls, "no retry")
		})
	}
}

func TestGeminiClient_DefaultsMimeType(t *testing.T) {
	var body []byte
	gw := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, geminiEnvelope(classificationJSON))
	})
	_, err := gw.Classify(context.Background(), ImagePayload{Data: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", gjson.GetBytes(body, "contents.0.parts.0.inlineData.mimeType").String())
}
