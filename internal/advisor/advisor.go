package advisor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"crypto-insight/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Categories lists the analysis categories in presentation order.
var Categories = []string{"general", "technical", "fundamental", "news", "sentiment", "risk", "prediction"}

var categoryPrompts = map[string]string{
	"general": "Provide a comprehensive general market analysis for the following cryptocurrency data. " +
		"Focus on overall market trends, position in the market, and key highlights: ",
	"technical": "Perform a detailed technical analysis including price patterns, support/resistance levels, " +
		"moving averages, volatility analysis, and trading signals for: ",
	"fundamental": "Analyze the fundamental factors including market cap analysis, supply economics, " +
		"adoption metrics, and long-term value proposition for: ",
	"news": "Analyze the potential impact of recent market news and developments on this cryptocurrency. " +
		"Consider regulatory changes, partnerships, and market sentiment: ",
	"sentiment": "Evaluate the current market sentiment and investor behavior patterns. " +
		"Analyze volume trends, price action, and market psychology for: ",
	"risk": "Provide a comprehensive risk assessment including volatility risks, market risks, " +
		"regulatory risks, and liquidity risks for: ",
	"prediction": "Generate informed price predictions and potential scenarios based on technical and " +
		"fundamental analysis. Include short-term and medium-term outlook for: ",
}

// BuildPrompt prefixes the context block with the category instructions.
func BuildPrompt(category, contextText string) (string, error) {
	prefix, ok := categoryPrompts[category]
	if !ok {
		return "", fmt.Errorf("unknown analysis category %q", category)
	}
	return prefix + contextText, nil
}

// Analyst turns a context block into free-form text per category.
type Analyst struct {
	tracer      trace.Tracer
	llm         LLMClient
	model       string
	concurrency int
}

func NewAnalyst(tracer trace.Tracer, llm LLMClient, model string, concurrency int) *Analyst {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Analyst{
		tracer:      tracer,
		llm:         llm,
		model:       model,
		concurrency: concurrency,
	}
}

// Analyze generates every category. A failing category is reported in its
// own entry and never fails the others.
func (a *Analyst) Analyze(ctx context.Context, symbol, contextText string) map[string]string {
	ctx, span := a.tracer.Start(ctx, "advisor.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.Int("analysis.categories", len(Categories)),
	)

	log := logger.WithComponent("advisor").WithField("symbol", symbol)

	var (
		mu     sync.Mutex
		result = make(map[string]string, len(Categories))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, category := range Categories {
		g.Go(func() error {
			text := a.generate(gctx, category, contextText)
			if strings.HasPrefix(text, "Error generating") {
				log.WithField("category", category).Warn(text)
			}
			mu.Lock()
			result[category] = text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (a *Analyst) generate(ctx context.Context, category, contextText string) string {
	prompt, err := BuildPrompt(category, contextText)
	if err != nil {
		return fmt.Sprintf("Error generating %s analysis: %v", category, err)
	}

	reply, err := a.callLLM(ctx, category, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
	if err != nil {
		return fmt.Sprintf("Error generating %s analysis: %v", category, err)
	}
	if strings.TrimSpace(reply) == "" {
		return fmt.Sprintf("No %s analysis generated", category)
	}
	return reply
}

func (a *Analyst) callLLM(
	ctx context.Context,
	category string,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	ctx, span := a.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", a.model),
		attribute.String("analysis.category", category),
		attribute.Int("llm.message_count", len(messages)),
	)

	completion, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", nil
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
