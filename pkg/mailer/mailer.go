// Package mailer fetches rendered email HTML from the remote content
// provider and normalizes the provider's response envelope into a Result.
package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"

	"mailview/pkg/result"
)

const DefaultBaseURL = "https://api.mailprovider.io"

// Client calls the content provider's email retrieval endpoint.
// The zero Option set targets the production API.
type Client struct {
	baseURL *url.URL
}

type Option func(*Client)

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

func New(opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{baseURL: u}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the provider's response shape: data and error are mutually
// exclusive, and either may be absent entirely.
type envelope struct {
	Data *struct {
		HTML string `json:"html"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const genericFetchError = "Failed to fetch email"

// Fetch retrieves the HTML body of the given email. A fresh http.Client is
// constructed per call; volume is one call per cache miss, so connection
// reuse is not worth carrying state for. Transport and decoding problems
// never escape as errors, they become 502 failures.
func (c *Client) Fetch(ctx context.Context, emailID, apiKey string) result.Result[string] {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "v1", "emails", emailID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return result.Fail[string](http.StatusBadGateway, genericFetchError)
	}
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return result.Fail[string](http.StatusBadGateway, genericFetchError)
	}
	defer res.Body.Close()

	var body envelope
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return result.Fail[string](http.StatusBadGateway, genericFetchError)
	}

	if body.Error != nil {
		if body.Error.Message != "" {
			return result.Fail[string](http.StatusBadGateway, body.Error.Message)
		}
		return result.Fail[string](http.StatusBadGateway, genericFetchError)
	}
	if body.Data == nil {
		return result.Fail[string](http.StatusNotFound, "Email not found")
	}
	if body.Data.HTML == "" {
		return result.Fail[string](http.StatusBadGateway, genericFetchError)
	}
	return result.Ok(body.Data.HTML)
}
