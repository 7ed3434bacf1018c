package ai

import (
	"context"
	"log"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Reporter generates natural-language summaries of analytics data. It is
// optional: when credentials are absent the admin endpoints return the raw
// aggregates with AIEnabled=false.
type Reporter struct {
	client *openai.Client
	model  string
}

func NewReporter() *Reporter {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("AI reports disabled - OPENAI_API_KEY not provided")
		return &Reporter{}
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	clientValue := openai.NewClient(opts...)
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Reporter{client: &clientValue, model: model}
}

func (r *Reporter) Enabled() bool {
	return r.client != nil
}

func (r *Reporter) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !r.Enabled() {
		return "", &ReportError{Message: "AI reports are not enabled"}
	}

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(1500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		log.Printf("AI API error: %v", err)
		return "", &ReportError{Message: "failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ReportError{Message: "AI returned empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

type ReportError struct {
	Message string
	Cause   error
}

func (e *ReportError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
