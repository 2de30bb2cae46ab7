package drafter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"
)

//go:generate mockgen -source=drafter.go -destination=mock_drafter.go -package=drafter

// DefaultTimeout bounds one draft request
const DefaultTimeout = 15 * time.Second

const promptTemplate = `Based on the following user prompt, generate details for an auction item. The user prompt is: %q. ` +
	`Provide a creative and appealing title, a detailed and enticing description (around 30-50 words), ` +
	`and a reasonable starting price as an integer.`

// Drafter turns a free-text prompt into suggested listing copy.
// A nil draft with a nil error means the backend had nothing usable.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (*model.AuctionDraft, error)
}

// HTTPDrafter calls a JSON text-generation endpoint
type HTTPDrafter struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type draftRequest struct {
	Prompt string `json:"prompt"`
}

// NewHTTPDrafter creates a drafter for endpoint. A zero timeout uses DefaultTimeout.
func NewHTTPDrafter(endpoint, apiKey string, timeout time.Duration) *HTTPDrafter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDrafter{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether both the endpoint and the API key are configured
func (d *HTTPDrafter) Enabled() bool {
	return d.endpoint != "" && d.apiKey != ""
}

// BuildPrompt wraps the seller's text in the generation instructions
func BuildPrompt(prompt string) string {
	return fmt.Sprintf(promptTemplate, prompt)
}

// Draft posts the prompt and decodes {title, description, startingPrice}.
func (d *HTTPDrafter) Draft(ctx context.Context, prompt string) (*model.AuctionDraft, error) {
	if !d.Enabled() {
		utils.Warn("drafter: endpoint or API key missing, drafting disabled", nil)
		return nil, auctionerrors.ErrDrafterDisabled
	}

	body, err := json.Marshal(draftRequest{Prompt: BuildPrompt(prompt)})
	if err != nil {
		return nil, fmt.Errorf("drafter: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("drafter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", d.apiKey)
	req.Header.Set("User-Agent", "auction-house-drafter/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drafter: %w: %v", auctionerrors.ErrDraftFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		utils.Warn("drafter: backend returned error", map[string]any{"status": resp.StatusCode, "body": string(snippet)})
		return nil, fmt.Errorf("drafter: %w: backend returned %d", auctionerrors.ErrDraftFailed, resp.StatusCode)
	}

	var draft model.AuctionDraft
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&draft); err != nil {
		return nil, fmt.Errorf("drafter: %w: decode response: %v", auctionerrors.ErrDraftFailed, err)
	}
	if !draft.Usable() {
		return nil, nil
	}
	return &draft, nil
}
