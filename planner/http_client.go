package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// HTTPClient talks to the external AI planner service. Every call goes
// through a circuit breaker so that a dead planner trips fast instead of
// stalling project creation on every request.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewHTTPClient(baseURL string, breaker *gobreaker.CircuitBreaker) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
		breaker: breaker,
		timeout: 20 * time.Second,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, pc ProjectContext) (*GeneratedPlan, error) {
	return c.post(ctx, "/api/planner/generate", pc)
}

func (c *HTTPClient) Refine(ctx context.Context, current []DayTemplate, instructions string) (*GeneratedPlan, error) {
	payload := struct {
		Days         []DayTemplate `json:"days"`
		Instructions string        `json:"instructions"`
	}{Days: current, Instructions: instructions}
	return c.post(ctx, "/api/planner/refine", payload)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) (*GeneratedPlan, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode planner request: %v", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("planner service returned status %d", resp.StatusCode)
		}

		var plan GeneratedPlan
		if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
			return nil, fmt.Errorf("failed to decode planner response: %v", err)
		}
		return &plan, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*GeneratedPlan), nil
}
