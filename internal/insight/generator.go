package insight

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/metrics"
)

const DefaultModel = "gpt-4o-mini"

// Generator writes a short, household-specific energy saving tip for an
// estimate using OpenAI's chat completions API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator returns an error when apiKey is empty; callers treat that as
// "insights disabled".
func NewGenerator(apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, in household.Input, kwh float64) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(in, kwh)),
		},
		MaxCompletionTokens: openai.Int(160),
	})
	if err != nil {
		metrics.InsightsGenerated.WithLabelValues("error").Inc()
		return "", fmt.Errorf("insight generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.InsightsGenerated.WithLabelValues("empty").Inc()
		return "", errors.New("no insight returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		metrics.InsightsGenerated.WithLabelValues("empty").Inc()
		return "", errors.New("empty insight returned")
	}

	metrics.InsightsGenerated.WithLabelValues("ok").Inc()
	log.Printf("insight: generated %d chars for %.0f kWh estimate", len(text), kwh)
	return text, nil
}

const systemPrompt = "You are a home energy advisor. Reply with two or three practical sentences, no lists, no greetings."

// BuildPrompt describes the household and its estimate in plain language.
func BuildPrompt(in household.Input, kwh float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A household of %d lives in a %.0f sqft home", in.NumOccupants, in.HouseSizeSqft)
	if in.EnergyStarHome {
		b.WriteString(" certified Energy Star")
	}
	fmt.Fprintf(&b, ". Outside temperature is %d°C on %04d-%02d-%02d.", in.OutsideTempCelsius, in.Year, in.Month, in.Day)

	fmt.Fprintf(&b, " Heating: %s.", describeHeating(in.HeatingType))
	fmt.Fprintf(&b, " Cooling: %s.", describeCooling(in.CoolingType))
	if in.ManualOverride == household.OverrideYes {
		b.WriteString(" They often override the thermostat schedule manually.")
	}

	fmt.Fprintf(&b, " Estimated monthly usage is %.0f kWh. Suggest how they could reduce it.", kwh)
	return b.String()
}

func describeHeating(h household.HeatingType) string {
	switch h {
	case household.HeatingElectric:
		return "electric"
	case household.HeatingGas:
		return "gas"
	default:
		return "none"
	}
}

func describeCooling(c household.CoolingType) string {
	switch c {
	case household.CoolingAC:
		return "air conditioning"
	case household.CoolingFan:
		return "fans"
	default:
		return "none"
	}
}
