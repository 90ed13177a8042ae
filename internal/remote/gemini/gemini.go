// Package gemini wraps the cloud Gemini models used as remote collaborators:
// the vision model for broad-coverage plant identification and the text
// model for treatment advice.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"image"

	"google.golang.org/genai"

	"github.com/plantscope/plantscope/internal/engine/imaging"
	"github.com/plantscope/plantscope/internal/model"
)

// ErrUnavailable signals that the remote models are not configured (no API
// key). Callers are expected to degrade, not fail.
var ErrUnavailable = errors.New("gemini: not configured")

// DefaultModel is used for both vision and text when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Client holds a configured genai client plus the model names to call.
// A nil *Client is a valid "disabled" collaborator: every call returns
// ErrUnavailable.
type Client struct {
	client      *genai.Client
	visionModel string
	textModel   string
}

// New creates a Client for the given API key. visionModel and textModel
// default to DefaultModel when empty.
func New(ctx context.Context, apiKey, visionModel, textModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if visionModel == "" {
		visionModel = DefaultModel
	}
	if textModel == "" {
		textModel = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &Client{client: client, visionModel: visionModel, textModel: textModel}, nil
}

// Identify asks the vision model for a best-effort plant identification.
// Any network failure or malformed reply is returned as an error; the caller
// decides how to degrade. Never retried here.
func (c *Client) Identify(ctx context.Context, img image.Image) (model.RemoteResult, error) {
	if c == nil || c.client == nil {
		return model.RemoteResult{}, ErrUnavailable
	}

	jpegBytes, err := imaging.EncodeJPEG(img)
	if err != nil {
		return model.RemoteResult{}, fmt.Errorf("gemini: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(visionPrompt),
			genai.NewPartFromBytes(jpegBytes, "image/jpeg"),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.visionModel, contents, nil)
	if err != nil {
		return model.RemoteResult{}, fmt.Errorf("gemini: vision call failed: %w", err)
	}

	return parseVisionReply(resp.Text())
}

// Advise asks the text model for treatment advice for a diagnosed disease.
func (c *Client) Advise(ctx context.Context, disease string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrUnavailable
	}

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(treatmentPrompt, disease), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: advice call failed: %w", err)
	}

	return resp.Text(), nil
}

const visionPrompt = `You are an expert plant pathologist specializing in house-grown, indoor, and small garden plants
including herbs (mint, tulsi, basil, coriander, rosemary, oregano), flowers (rose, hibiscus, marigold,
jasmine, dahlia, lavender), vegetables (tomato, chilli, capsicum, spinach), fruits (strawberry, lemon,
guava, mango, banana, grapes), and other common house plants (aloe vera, drumstick/moringa, curry leaves).

Analyze this plant leaf image and identify:
1. The plant species (if identifiable)
2. Any disease or health issue visible
3. Your confidence level (0-100%)

Respond in EXACTLY this JSON format, nothing else:
{"plant": "plant name", "disease": "disease name or Healthy", "confidence": 85}

If the plant looks healthy, set disease to "Healthy".
If you cannot identify the plant, still try to identify any visible disease symptoms.`

const treatmentPrompt = `You are a plant care expert specializing in house-grown, indoor, and small home garden plants.
A home-grown plant has been diagnosed with: %q.

Provide a concise, actionable response suitable for a home gardener growing plants in pots or small gardens.
Use this exact format:

**Cause:** (1-2 sentences)
**Symptoms:** (bullet list, 3-4 items)
**Treatment:** (numbered steps, 3-5 items, using easily available home remedies and products)
**Prevention:** (bullet list, 3-4 items)

Keep the response under 200 words. Be practical, beginner-friendly, and specific to home growing conditions.`
