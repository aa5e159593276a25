package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"focargo/models"

	"github.com/go-playground/validator/v10"
)

// ImagePayload is a decoded photo ready to be sent for classification.
type ImagePayload struct {
	MimeType string
	Data     []byte
}

// Gateway is the generative-AI collaborator. One attempt per call: no retry, no cache.
type Gateway interface {
	Classify(ctx context.Context, img ImagePayload) (*models.ClassificationResult, error)
	GenerateQuiz(ctx context.Context, prompt string) (*models.QuizData, error)
}

var validate = validator.New()

// Validate runs struct validation tags; shared by handlers for request bodies.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

var codeFence = regexp.MustCompile("```(?:json)?\\n?")

// CleanResponseText strips markdown code fences the model sometimes wraps JSON in.
func CleanResponseText(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// decodeStructured turns the model's text into T, or a sentinel error:
// ErrEmptyResponse when there is nothing to parse, ErrMalformedResponse otherwise.
func decodeStructured[T any](text string) (*T, error) {
	cleaned := CleanResponseText(text)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}
	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}
