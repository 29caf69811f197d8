package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Transport executes one GraphQL operation and decodes its data payload
// into out. Implementations report non-OK HTTP statuses and GraphQL body
// errors as errors.
type Transport interface {
	Do(ctx context.Context, query string, variables map[string]any, out any) error
}

// Client posts GraphQL operations as query/variables JSON to a single
// endpoint, authenticated with a bearer token. It implements Transport.
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
	log      *zap.Logger
}

// NewClient creates a GraphQL client for endpoint. A nil httpc falls back to
// http.DefaultClient; a nil logger disables logging.
func NewClient(endpoint, token string, httpc *http.Client, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("graphql client requires an endpoint")
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		endpoint: endpoint,
		token:    token,
		httpc:    httpc,
		log:      log,
	}, nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors,omitempty"`
}

// Do posts one operation. A non-OK status aborts without reading a result;
// errors reported in the response body abort likewise. No retries.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("graphql request rejected",
			zap.String("status", resp.Status),
			zap.String("endpoint", c.endpoint),
		)
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var decoded gqlResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, gerr := range decoded.Errors {
			messages = append(messages, gerr.Message)
		}
		c.log.Error("graphql operation failed",
			zap.Strings("errors", messages),
		)
		return fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}

	if out != nil && len(decoded.Data) > 0 {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}
