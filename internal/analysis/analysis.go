// Package analysis answers questions about decrypted asset content using a chat model.
package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultMaxContentBytes bounds how much text content is sent to the model.
const DefaultMaxContentBytes = 256 * 1024

const systemPrompt = "You answer questions about a single piece of content that the user has access to. " +
	"Base the answer only on that content and say so when it does not contain the answer."

// OpenAIAnalyzer implements content analysis on the OpenAI chat completions API.
type OpenAIAnalyzer struct {
	client          openai.Client
	model           string
	maxContentBytes int
	requestOptions  []option.RequestOption
}

// OpenAIOption configures an OpenAIAnalyzer.
type OpenAIOption func(*OpenAIAnalyzer)

// WithModel sets the chat model.
func WithModel(model string) OpenAIOption {
	return func(a *OpenAIAnalyzer) {
		if model != "" {
			a.model = model
		}
	}
}

// WithMaxContentBytes sets the text truncation limit.
func WithMaxContentBytes(n int) OpenAIOption {
	return func(a *OpenAIAnalyzer) {
		if n > 0 {
			a.maxContentBytes = n
		}
	}
}

// WithRequestOptions appends raw client options (base URL, HTTP client, retries).
func WithRequestOptions(opts ...option.RequestOption) OpenAIOption {
	return func(a *OpenAIAnalyzer) {
		a.requestOptions = append(a.requestOptions, opts...)
	}
}

// NewOpenAIAnalyzer creates an analyzer authenticated with apiKey.
func NewOpenAIAnalyzer(apiKey string, opts ...OpenAIOption) (*OpenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", assetsDomain.ErrAnalyzerUnavailable)
	}

	a := &OpenAIAnalyzer{
		model:           DefaultModel,
		maxContentBytes: DefaultMaxContentBytes,
	}
	for _, opt := range opts {
		opt(a)
	}

	clientOptions := append([]option.RequestOption{option.WithAPIKey(apiKey)}, a.requestOptions...)
	a.client = openai.NewClient(clientOptions...)

	return a, nil
}

// Analyze sends content and question to the model and returns its answer.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, content []byte, mimeType, question string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			a.contentMessage(content, mimeType, question),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", assetsDomain.ErrAnalyzerUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", assetsDomain.ErrAnalyzerUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

func (a *OpenAIAnalyzer) contentMessage(content []byte, mimeType, question string) openai.ChatCompletionMessageParamUnion {
	mediaType := baseMediaType(mimeType)

	switch {
	case isImage(mediaType):
		dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content)
		return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(question),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		})
	case isText(mediaType):
		text, truncated := truncateUTF8(content, a.maxContentBytes)
		var b strings.Builder
		fmt.Fprintf(&b, "Content (%s", mediaType)
		if truncated {
			fmt.Fprintf(&b, ", first %d bytes of %d", len(text), len(content))
		}
		b.WriteString("):\n\n")
		b.WriteString(text)
		b.WriteString("\n\nQuestion: ")
		b.WriteString(question)
		return openai.UserMessage(b.String())
	default:
		return openai.UserMessage(fmt.Sprintf(
			"The content is a %s file of %d bytes that cannot be shown as text.\n\nQuestion: %s",
			mediaType, len(content), question,
		))
	}
}

func baseMediaType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mediaType == "" {
		return "application/octet-stream"
	}
	return mediaType
}

func isImage(mediaType string) bool {
	switch mediaType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}

func isText(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") ||
		strings.HasSuffix(mediaType, "+json") ||
		strings.HasSuffix(mediaType, "+xml") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/javascript",
		"application/x-yaml", "application/yaml", "application/csv", "application/x-ndjson":
		return true
	}
	return false
}

// truncateUTF8 cuts content to at most limit bytes without splitting a rune.
func truncateUTF8(content []byte, limit int) (string, bool) {
	if len(content) <= limit {
		return strings.ToValidUTF8(string(content), "�"), false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return strings.ToValidUTF8(string(content[:cut]), "�"), true
}

// Disabled is the analyzer used when no model is configured.
type Disabled struct{}

// Analyze always fails with ErrAnalyzerUnavailable.
func (Disabled) Analyze(context.Context, []byte, string, string) (string, error) {
	return "", assetsDomain.ErrAnalyzerUnavailable
}
