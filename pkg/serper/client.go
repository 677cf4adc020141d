// Package serper performs news searches against the Serper API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/steelwatch/newsbrief/internal/resilience"
)

const defaultBaseURL = "https://google.serper.dev"

// ErrInsufficientCredits signals that the API account has run out of
// search credits. Callers stop querying for the run but keep processing
// what they already have.
var ErrInsufficientCredits = eris.New("serper: insufficient credits")

// Client performs news searches.
type Client interface {
	SearchNews(ctx context.Context, query string) ([]NewsItem, error)
}

// NewsItem is a single news search result.
type NewsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num,omitempty"`
	Gl    string `json:"gl,omitempty"`
	Hl    string `json:"hl,omitempty"`
}

type searchResponse struct {
	News []NewsItem `json:"news"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLocale sets the gl/hl request parameters.
func WithLocale(gl, hl string) Option {
	return func(c *httpClient) {
		c.gl = gl
		c.hl = hl
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	gl      string
	hl      string
	http    *http.Client
}

// NewClient creates a Serper API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchNews(ctx context.Context, query string) ([]NewsItem, error) {
	body, err := json.Marshal(searchRequest{Query: query, Gl: c.gl, Hl: c.hl})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/news", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "serper: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serper: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serper: read response")
	}

	if resp.StatusCode != http.StatusOK {
		if isCreditError(resp.StatusCode, respBody) {
			return nil, ErrInsufficientCredits
		}
		apiErr := eris.Errorf("serper: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &resilience.TransientError{
				Err:        apiErr,
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}
		return nil, apiErr
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal response")
	}

	return result.News, nil
}

// isCreditError detects the out-of-credits rejection, which must not be
// retried and must not abort the whole run. The API answers 402 when the
// account balance is exhausted; some gateways report the same condition
// as a 403 with a credit message in the body.
func isCreditError(status int, body []byte) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	return status == http.StatusForbidden && strings.Contains(strings.ToLower(string(body)), "credit")
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
