// Package llm wraps the OpenAI-compatible chat and embedding APIs behind
// the two capabilities the pipeline needs: constrained chat completion and
// batch embedding.
package llm

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/pkg/logger"
)

// Embedding requests are capped client-side to respect the backend's
// per-call input limit.
const embedBatchSize = 512

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// Chatter is the chat-completion capability. *Client implements it; tests
// substitute counting fakes.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []Message, maxTokens int) (string, error)
}

// Embedder is the batch-embedding capability.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Client struct {
	client         *openai.Client
	embeddingModel string
	timeout        time.Duration
}

func NewClient(apiKey, baseURL, embeddingModel string, timeoutSec int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	logger.Info("LLM client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("embedding_model", embeddingModel),
	)

	return &Client{
		client:         openai.NewClientWithConfig(cfg),
		embeddingModel: embeddingModel,
		timeout:        time.Duration(timeoutSec) * time.Second,
	}
}

// Chat issues a single deterministic chat completion and returns the
// trimmed content string.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
		// go-openai drops a literal zero from the request body; the
		// smallest nonzero float still selects greedy decoding.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	logger.Debug("LLM completion generated",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// EmbedBatch embeds texts in bounded batches. Each batch response is
// re-sorted by its declared input index before being paired back with the
// source text, since the backend does not guarantee response ordering.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding response size mismatch: got %d, want %d",
				len(resp.Data), len(batch))
		}

		data := make([]openai.Embedding, len(resp.Data))
		copy(data, resp.Data)
		sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

		for _, item := range data {
			emb := make([]float32, len(item.Embedding))
			copy(emb, item.Embedding)
			embeddings = append(embeddings, emb)
		}

		metrics.EmbeddingBatches.Inc()
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))
	return embeddings, nil
}

// verdictRe matches CORRECT or WRONG as the first token of a judge reply.
var verdictRe = regexp.MustCompile(`(?i)^\s*(correct|wrong)\b`)

// ParseVerdict extracts the binary correctness signal from a judge reply.
// When no leading CORRECT/WRONG token appears, it falls back to checking
// for a YES or CORRECT prefix.
func ParseVerdict(content string) bool {
	if m := verdictRe.FindStringSubmatch(content); m != nil {
		return strings.EqualFold(m[1], "correct")
	}
	upper := strings.ToUpper(strings.TrimSpace(content))
	return strings.HasPrefix(upper, "YES") || strings.HasPrefix(upper, "CORRECT")
}

// Judge runs a judge prompt through the chat capability and parses the
// verdict. The full reply is returned as the explanation.
func Judge(ctx context.Context, c Chatter, model string, messages []Message, maxTokens int) (bool, string, error) {
	content, err := c.Chat(ctx, model, messages, maxTokens)
	if err != nil {
		return false, "", err
	}
	return ParseVerdict(content), content, nil
}
