// Package straico is the upstream client: a thin HTTP wrapper around
// the single non-streaming prompt-completion endpoint this gateway
// translates against.
package straico

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"straico-gateway/apierror"
	"straico-gateway/types"
)

// Client dispatches UpstreamRequests to Straico and parses the single
// completion payload it returns.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New constructs a Client with a connection-timeout-aware transport,
// matching the teacher's dial-timeout pattern.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
			},
		},
	}
}

// Complete sends a single prompt-completion request and returns the
// parsed upstream response, or an *apierror.Error describing the
// failure class (network timeout, network connect, non-2xx upstream
// status, or malformed body).
func (c *Client) Complete(ctx context.Context, req types.UpstreamRequest) (types.UpstreamResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.UpstreamResponse{}, apierror.Wrap(apierror.Serde, "failed to encode upstream request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return types.UpstreamResponse{}, apierror.Wrap(apierror.Serde, "failed to build upstream request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return types.UpstreamResponse{}, apierror.Wrap(apierror.NetworkTimeout, "upstream request cancelled or timed out", err)
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return types.UpstreamResponse{}, apierror.Wrap(apierror.NetworkTimeout, "upstream request timed out", err)
		}
		return types.UpstreamResponse{}, apierror.Wrap(apierror.NetworkConnect, "failed to reach upstream", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.UpstreamResponse{}, apierror.Wrap(apierror.NetworkConnect, "failed to read upstream response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return types.UpstreamResponse{}, apierror.RateLimit(parseRetryAfter(resp), fmt.Sprintf("upstream rate limited: %s", string(respBody)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.UpstreamResponse{}, apierror.Upstream(resp.StatusCode, fmt.Sprintf("upstream returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	var upstreamResp types.UpstreamResponse
	if err := json.Unmarshal(respBody, &upstreamResp); err != nil {
		return types.UpstreamResponse{}, apierror.Wrap(apierror.ResponseParse, "failed to parse upstream response body", err)
	}

	if !upstreamResp.Success {
		message := upstreamResp.Error
		if message == "" {
			message = "upstream reported an unsuccessful completion"
		}
		return types.UpstreamResponse{}, apierror.Upstream(resp.StatusCode, message)
	}

	return upstreamResp, nil
}

// parseRetryAfter reads the Retry-After header as a seconds count,
// returning nil when the upstream did not send one or it is not a
// plain integer (Straico does not send the HTTP-date form).
func parseRetryAfter(resp *http.Response) *int {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &secs
}
