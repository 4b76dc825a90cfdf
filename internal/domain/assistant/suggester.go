package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

var ErrEmptyCompletion = errors.New("assistant returned no completion")

// Suggester turns a conversation into structured consultation advice.
type Suggester interface {
	Suggest(ctx context.Context, messages []Message) (*ChatResult, error)
}

const suggestionPrompt = `You are Alfa, a clinical documentation assistant for an outpatient clinic.
Given the conversation so far, reply with a JSON object:
{
  "reply": "<short answer to the doctor's latest message>",
  "suggestions": {
    "chiefComplaint": "",
    "symptoms": "",
    "diagnoses": [{"code": "", "description": "", "confidence": 0.0}],
    "medications": [{"name": "", "dosage": "", "frequency": "", "duration": "", "instructions": ""}],
    "labTests": [],
    "advice": "",
    "followUpDate": ""
  }
}
Omit "suggestions" when the conversation does not support concrete advice.
You assist with documentation only; the doctor makes all clinical decisions.`

// GeminiSuggester generates advice with the Gemini API, asking for JSON
// output so the reply parses into ChatResult directly.
type GeminiSuggester struct {
	cli   *genai.Client
	model string
}

func NewGeminiSuggester(ctx context.Context, apiKey, model string) (*GeminiSuggester, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiSuggester{cli: cli, model: model}, nil
}

func (g *GeminiSuggester) Suggest(ctx context.Context, messages []Message) (*ChatResult, error) {
	var b strings.Builder
	b.WriteString(suggestionPrompt)
	b.WriteString("\n\n[CONVERSATION]\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: b.String()}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("generating suggestions: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyCompletion
	}

	var result ChatResult
	if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), &result); err != nil {
		return nil, fmt.Errorf("decoding assistant reply: %w", err)
	}
	return &result, nil
}
