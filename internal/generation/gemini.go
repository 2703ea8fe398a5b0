package generation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fitreport/internal/articulation"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// =============================================================================
// GEMINI GENERATOR
// =============================================================================

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	// BaseURL overrides the API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini implements Generator with Google's Gemini API.
type Gemini struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *zap.Logger
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg, logger: logger}, nil
}

// Generate asks Gemini for a JSON report shaped like schema. A transport
// failure is returned as an *Error; a blocked or cut-off answer comes back
// as a non-fulfilled Response.
func (g *Gemini) Generate(ctx context.Context, inputs map[string]any, schema articulation.Schema) (*Response, error) {
	prompt, err := BuildPrompt(inputs, schema)
	if err != nil {
		return nil, &Error{State: StateFailed, Err: err}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(systemInstruction)}},
		Temperature:       genai.Ptr(g.cfg.Temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResponseSchema(schema),
	}
	if g.cfg.MaxOutputTokens > 0 {
		config.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	g.logger.Debug("generation request",
		zap.String("model", g.cfg.Model),
		zap.String("schema", schema.Name),
		zap.Int("prompt_bytes", len(prompt)))

	result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, &Error{State: StateFailed, Err: fmt.Errorf("GenAI generate failed: %w", err)}
	}

	resp := &Response{Model: g.cfg.Model}
	if u := result.UsageMetadata; u != nil {
		resp.InputTokens = int(u.PromptTokenCount)
		resp.OutputTokens = int(u.CandidatesTokenCount)
		g.logger.Debug("generation usage", zap.Int32("total_tokens", u.TotalTokenCount))
	}

	if len(result.Candidates) == 0 {
		resp.State = StateRejected
		if result.PromptFeedback != nil {
			resp.Reason = string(result.PromptFeedback.BlockReason)
		}
		g.logger.Warn("generation rejected", zap.String("reason", resp.Reason))
		return resp, nil
	}

	resp.State, resp.Reason = candidateState(result.Candidates[0].FinishReason)
	resp.Outputs = []Output{{Value: result.Text()}}
	g.logger.Debug("generation response",
		zap.String("state", resp.State),
		zap.String("finish_reason", string(result.Candidates[0].FinishReason)))
	return resp, nil
}

func candidateState(reason genai.FinishReason) (string, string) {
	switch reason {
	case "", genai.FinishReasonStop, genai.FinishReasonUnspecified:
		return StateFulfilled, ""
	case genai.FinishReasonMaxTokens:
		return StateTruncated, string(reason)
	default:
		return StateRejected, strings.ToLower(string(reason))
	}
}

// ResponseSchema converts a report schema into the GenAI response schema.
func ResponseSchema(s articulation.Schema) *genai.Schema {
	return objectSchema(s.Description, s.Fields)
}

func objectSchema(description string, fields []articulation.Field) *genai.Schema {
	out := &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		out.Properties[f.Name] = fieldSchema(f)
		out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
		if f.Required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out
}

func fieldSchema(f articulation.Field) *genai.Schema {
	switch f.Type {
	case articulation.TypeObject:
		return objectSchema(f.Description, f.Fields)
	case articulation.TypeArray:
		s := &genai.Schema{Type: genai.TypeArray, Description: f.Description}
		if f.Items != "" {
			s.Items = &genai.Schema{Type: genaiType(f.Items)}
		}
		return s
	default:
		return &genai.Schema{Type: genaiType(f.Type), Description: f.Description}
	}
}

func genaiType(t articulation.FieldType) genai.Type {
	switch t {
	case articulation.TypeNumber:
		return genai.TypeNumber
	case articulation.TypeInteger:
		return genai.TypeInteger
	case articulation.TypeBoolean:
		return genai.TypeBoolean
	case articulation.TypeArray:
		return genai.TypeArray
	case articulation.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
