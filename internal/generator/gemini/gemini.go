package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"docqa/internal/domain"
)

const DefaultModel = "gemini-1.5-pro"

// Config configures the Gemini client.
type Config struct {
	APIKeyEnv string
	Model     string
}

// Client generates answers with a hosted Gemini model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewClient reads the API key from the configured environment variable.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{client: c, model: c.GenerativeModel(cfg.Model), name: cfg.Model}, nil
}

// Name returns the model identifier.
func (c *Client) Name() string { return "gemini/" + c.name }

// Generate sends prompt as a single user turn and returns the text of the
// first candidate that has any.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if unavailable(err) {
			return "", fmt.Errorf("%w: %w", domain.ErrGeneratorUnavailable, err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp), nil
}

func (c *Client) Close() error { return c.client.Close() }

// unavailable reports quota, overload and transport failures. The API
// surfaces them either as gRPC statuses or as HTTP status codes.
func unavailable(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
				return true
			}
		}
		if unavailableStatus(apiErr.HTTPCode()) {
			return true
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && unavailableStatus(gErr.Code) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func unavailableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
