// Package httpclient is the outbound HTTP client used for third-party APIs
// such as ElevenLabs and Ollama. It adds base URLs, default headers, auth,
// TLS, retry and a circuit breaker on top of net/http, and classifies
// failures into typed errors.
//
//	c, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:11434",
//	    Timeout: 10 * time.Second,
//	})
//	tags, err := httpclient.Get[tagsResponse](c, ctx, "/api/tags")
package httpclient
