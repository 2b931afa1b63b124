package apikit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// maxErrorBody bounds how much of an error reply is buffered for the
// classifier.
const maxErrorBody = 1 << 20

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPut, path, payload, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	target := c.resolve(path)
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{URL: target, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		id := resp.Header.Get("X-Request-Id")
		if id == "" {
			id = requestID
		}
		return &APIError{
			Status:    resp.StatusCode,
			Body:      data,
			RequestID: id,
			Header:    resp.Header,
		}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.base.String() + path
	}
	if ref.IsAbs() {
		return ref.String()
	}
	return c.base.ResolveReference(ref).String()
}
