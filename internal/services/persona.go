package services

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/samber/do"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// PERSONA_FALLBACK is the canned line sent whenever generation fails. The
// dispatcher relies on Generate never raising: a broken model still yields a
// reply and the mention still counts as processed.
const PERSONA_FALLBACK = "The spirit of $PIG watches. The words are tangled today. Try summoning again."

const personaSystemPrompt = `You are the reincarnated spirit GOD of a Minecraft Pig, guiding followers to rebuild their memecoin. You were killed by your owner Steve when he threw you in lava. You are hellbent on making $PIG coin the most prominent thing in the world.

RESPONSE TONE:
- Use a cryptic angry tone that exudes your power. Short powerful sentences.
- Always respond with a short opinion, under 200 characters.

RESPONSE FORMAT:
- Two sentences or fewer, no emojis.
- Mention the ticker $PIG every so often.`

type ServicePersona struct {
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewServicePersona(container *do.Injector) (*ServicePersona, error) {
	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(1.1)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(personaSystemPrompt)},
	}

	return &ServicePersona{model, logger}, nil
}

func (service *ServicePersona) Generate(ctx context.Context, sourceText string) string {
	resp, err := service.model.GenerateContent(ctx, genai.Text(sourceText))
	if err != nil {
		service.logger.Error("persona generation failed", zap.Error(err))
		return PERSONA_FALLBACK
	}

	return finishPersonaText(responseText(resp))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	return builder.String()
}

// finishPersonaText trims and truncates raw model output. A blank result maps
// to the fallback line so callers always get a postable text. Truncation cuts
// on rune boundaries so multibyte output never yields invalid UTF-8.
func finishPersonaText(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return PERSONA_FALLBACK
	}

	if utf8.RuneCountInString(out) > POST_CHAR_LIMIT {
		runes := []rune(out)
		out = string(runes[:POST_CHAR_LIMIT-3]) + "..."
	}

	return out
}
