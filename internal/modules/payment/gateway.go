package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Gateway is the provider-agnostic interface the payment bridge talks to.
// Card data never passes through here; the provider's hosted UI collects it
// against the client secret.
type Gateway interface {
	// CreateIntent opens a payment intent for the given minor-unit amount.
	CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error)
	// GetIntent reads the intent's current status back from the provider.
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// ── Stripe adapter ────────────────────────────────────────────────────────────

type stripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeGateway(secretKey, baseURL string) Gateway {
	return &stripeGateway{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*Intent, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", req.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	return g.do(ctx, http.MethodPost, "/v1/payment_intents", form)
}

func (g *stripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	return g.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil)
}

func (g *stripeGateway) do(ctx context.Context, method, path string, form url.Values) (*Intent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stripe response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s (HTTP %d)", apiErr.Error.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("stripe: HTTP %d", resp.StatusCode)
	}

	intent := &Intent{}
	if err := json.Unmarshal(raw, intent); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return intent, nil
}
