package httpclient

import "net/http"

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is joined to BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body accepts io.Reader, []byte, string, or any value to JSON-encode.
	Body any
	// Auth overrides the client-level auth.
	Auth *AuthConfig
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}
