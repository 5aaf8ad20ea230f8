package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/campusvoice/campusvoice"
)

// A Client performs authenticated-by-key calls against a board server.
type Client struct {
	baseURL   string
	clientKey string
	http      *http.Client
}

func New(baseURL string, clientKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		clientKey: clientKey,
		http:      http.DefaultClient,
	}
}

func (c *Client) ClientKey() string {
	return c.clientKey
}

type feedResponse struct {
	Requests []*campusvoice.ProjectedRequest `json:"requests"`
}

// FetchFeed retrieves the full projected feed, with the caller's own votes
// resolved against the client key.
func (c *Client) FetchFeed(ctx context.Context) ([]*campusvoice.ProjectedRequest, error) {
	u := fmt.Sprintf("%s/requests?client_key=%s", c.baseURL, url.QueryEscape(c.clientKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp feedResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return resp.Requests, nil
}

// CreateRequest posts a new request without a photo.
func (c *Client) CreateRequest(ctx context.Context, content string, category string) (*campusvoice.Request, error) {
	body, err := json.Marshal(map[string]string{
		"content":    content,
		"category":   category,
		"client_key": c.clientKey,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/requests", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created campusvoice.Request
	if err := c.do(req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// CreateRequestWithPhoto posts a new request as a multipart form, streaming
// the photo from r under its original filename so the server keeps the
// extension.
func (c *Client) CreateRequestWithPhoto(ctx context.Context, content string, category string, filename string, r io.Reader) (*campusvoice.Request, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("content", content); err != nil {
		return nil, err
	}
	if err := form.WriteField("category", category); err != nil {
		return nil, err
	}
	if err := form.WriteField("client_key", c.clientKey); err != nil {
		return nil, err
	}

	part, err := form.CreateFormFile("photo", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/requests", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var created campusvoice.Request
	if err := c.do(req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// DeleteRequest removes one of the caller's own requests. The server
// rejects the call when the client key does not match the owner.
func (c *Client) DeleteRequest(ctx context.Context, requestID string) error {
	u := fmt.Sprintf("%s/requests/%s?client_key=%s", c.baseURL, url.PathEscape(requestID), url.QueryEscape(c.clientKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// Vote records the caller's vote. VoteNone retracts an existing vote.
func (c *Client) Vote(ctx context.Context, requestID string, vote campusvoice.VoteType) error {
	body, err := json.Marshal(map[string]any{
		"request_id": requestID,
		"client_key": c.clientKey,
		"vote_type":  vote,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vote", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// Comment appends a comment to a request and returns it as stored.
func (c *Client) Comment(ctx context.Context, requestID string, content string) (*campusvoice.Comment, error) {
	body, err := json.Marshal(map[string]string{
		"request_id": requestID,
		"client_key": c.clientKey,
		"content":    content,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/comments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var created campusvoice.Comment
	if err := c.do(req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
