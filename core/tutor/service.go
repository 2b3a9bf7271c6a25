package tutor

import (
	"context"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

const promptTemplate = "You are a tutor. Do NOT provide direct answers. " +
	"Instead, review concepts and provide a similar solved example. Question: %s"

// FallbackReply is returned when the generation service comes back empty.
const FallbackReply = "I'm not sure how to answer that."

// Generator is the text-in/text-out contract of the external generation service.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	gen    Generator
	policy *bluemonday.Policy
}

func NewService(gen Generator) *Service {
	return &Service{
		gen:    gen,
		policy: bluemonday.StrictPolicy(),
	}
}

// Ask strips all markup from question, wraps it in the tutoring instruction
// template and relays the generated reply.
func (svc *Service) Ask(ctx context.Context, question string) (string, error) {
	// markup never reaches the downstream prompt
	question = core.CleanString(html.UnescapeString(svc.policy.Sanitize(question)))
	if question == "" {
		return "", core.NewValidationError(errors.New("question required"))
	}

	reply, err := svc.gen.GenerateText(ctx, fmt.Sprintf(promptTemplate, question))
	if err != nil {
		return "", errors.Wrap(err, "generating reply")
	}
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}
