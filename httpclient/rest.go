package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TypedResponse is a response with its JSON body decoded into T.
type TypedResponse[T any] struct {
	StatusCode int
	Headers    http.Header
	Data       T
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithQueryParam sets a query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// Get sends a GET and decodes the JSON response into T.
func Get[T any](c *Client, ctx context.Context, path string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodGet, path, nil, opts...)
}

// Post sends body as JSON and decodes the JSON response into T.
func Post[T any](c *Client, ctx context.Context, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, path, body, opts...)
}

func doTyped[T any](c *Client, ctx context.Context, method, path string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("httpclient: decode %s response: %w", c.config.Name, err)
		}
	}
	return &TypedResponse[T]{StatusCode: resp.StatusCode, Headers: resp.Headers, Data: data}, nil
}
