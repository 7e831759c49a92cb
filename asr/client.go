package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/observability"
)

// earlyReplyTimeout bounds the read for a reply the engine sent before it
// stopped accepting our frame.
const earlyReplyTimeout = 500 * time.Millisecond

// Result is a successful recognition.
type Result struct {
	Status      uint8
	Text        string
	Checkcode   int32
	RequestCode int32
}

// Client talks to one ASR engine. It holds no per-call state and is safe for
// concurrent use; every call dials its own connection.
type Client struct {
	cfg     Config
	dialer  *net.Dialer
	log     *logger.Logger
	metrics *observability.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the instruments calls are recorded on.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient applies defaults to cfg and validates it.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.DialTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.WithComponent("asr")
	}
	if c.metrics == nil {
		c.metrics = observability.DefaultMetrics()
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Recognize sends audio to the engine and returns the transcript.
func (c *Client) Recognize(ctx context.Context, format Format, audio []byte) (*Result, error) {
	const op = "recognize"
	frame, err := EncodeRequest(c.cfg.Checkcode, RequestSTT, format, audio)
	if err != nil {
		c.metrics.RecordCall(ctx, "asr."+op, KindValidation.String(), 0)
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	resp, err := c.exchange(ctx, op, RequestSTT, frame, DecodeResponse,
		attribute.String(observability.AttrFormat, format.String()),
		attribute.Int(observability.AttrBytes, len(audio)),
	)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:      resp.Status,
		Text:        resp.Text,
		Checkcode:   resp.Checkcode,
		RequestCode: resp.RequestCode,
	}, nil
}

// RecognizeFile derives the format from fileName's extension and calls
// Recognize. An unsupported extension fails before any dial.
func (c *Client) RecognizeFile(ctx context.Context, fileName string, audio []byte) (*Result, error) {
	format, err := FormatFromName(fileName)
	if err != nil {
		return nil, err
	}
	return c.Recognize(ctx, format, audio)
}

// Ping checks that the engine is up and accepts our checkcode.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.exchange(ctx, "ping", RequestPing, EncodePing(c.cfg.Checkcode), DecodeStatus)
	return err
}

// exchange runs one connection through connect, send, receive and decode.
func (c *Client) exchange(ctx context.Context, op string, requestCode int32, frame []byte, decode func([]byte) (*Response, error), attrs ...attribute.KeyValue) (resp *Response, err error) {
	start := time.Now()
	attrs = append(attrs, attribute.String(observability.AttrPeer, c.cfg.Addr()))
	ctx, span := observability.StartSpan(ctx, "asr."+op, trace.WithAttributes(attrs...))
	defer func() {
		outcome := "ok"
		if k, ok := KindOf(err); ok {
			outcome = k.String()
		}
		span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
		if resp != nil {
			span.SetAttributes(attribute.Int(observability.AttrStatus, int(resp.Status)))
		}
		observability.EndSpan(span, err)
		c.metrics.RecordCall(ctx, "asr."+op, outcome, time.Since(start))

		fields := logger.Fields(logger.FieldOperation, op, "outcome", outcome, logger.FieldDuration, time.Since(start).Milliseconds())
		if err != nil {
			fields[logger.FieldError] = err
			c.log.WithContext(ctx).Warn("asr call failed", fields)
			return
		}
		c.log.WithContext(ctx).Debug("asr call complete", fields)
	}()

	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.Addr())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Kind: KindTimeout, Op: op, Err: ctxErr}
		}
		return nil, &Error{Kind: KindConnect, Op: op, Err: fmt.Errorf("%w: %w", ErrDial, err)}
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return nil, &Error{Kind: KindConnect, Op: op, Err: err}
	}
	if _, err := conn.Write(frame); err != nil {
		// The engine may reject on the header and close before the audio is
		// read; its status reply is still in our receive buffer.
		if early := c.earlyReply(conn); early != nil && early.Status != StatusSuccess {
			return early, &Error{Kind: KindEngine, Op: op, Status: early.Status}
		}
		return nil, &Error{Kind: KindConnect, Op: op, Err: fmt.Errorf("write frame: %w", err)}
	}

	buf, err := c.receive(ctx, conn)
	if err != nil {
		return nil, c.classifyReadErr(ctx, op, err)
	}
	if int64(len(buf)) > c.cfg.MaxResponseSize {
		return nil, &Error{Kind: KindProtocol, Op: op, Err: fmt.Errorf("response exceeds %d bytes", c.cfg.MaxResponseSize)}
	}

	resp, err = decode(buf)
	if err != nil {
		return nil, &Error{Kind: KindProtocol, Op: op, Err: err}
	}
	// The engine answers a checkcode mismatch with its own checkcode, so a
	// failure status is reported before the echo is compared.
	if resp.Status != StatusSuccess {
		return resp, &Error{Kind: KindEngine, Op: op, Status: resp.Status}
	}
	if err := c.checkEcho(ctx, op, requestCode, resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// receive reads until the engine closes its side. The read deadline is the
// earlier of the configured timeout and ctx's deadline; cancelling ctx
// expires it immediately.
func (c *Client) receive(ctx context.Context, conn net.Conn) ([]byte, error) {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	return io.ReadAll(io.LimitReader(conn, c.cfg.MaxResponseSize+1))
}

// earlyReply reads whatever the engine sent before a failed write. It
// returns nil unless a status header decodes.
func (c *Client) earlyReply(conn net.Conn) *Response {
	if err := conn.SetReadDeadline(time.Now().Add(earlyReplyTimeout)); err != nil {
		return nil
	}
	buf, _ := io.ReadAll(io.LimitReader(conn, c.cfg.MaxResponseSize))
	resp, err := DecodeStatus(buf)
	if err != nil {
		return nil
	}
	return resp
}

func (c *Client) classifyReadErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Error{Kind: KindTimeout, Op: op, Err: ctxErr}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	return &Error{Kind: KindConnect, Op: op, Err: fmt.Errorf("read response: %w", err)}
}

func (c *Client) checkEcho(ctx context.Context, op string, requestCode int32, resp *Response) error {
	if resp.Checkcode == c.cfg.Checkcode && resp.RequestCode == requestCode {
		return nil
	}
	mismatch := fmt.Errorf("echo mismatch: checkcode %d/%d, request code %d/%d",
		resp.Checkcode, c.cfg.Checkcode, resp.RequestCode, requestCode)
	if c.cfg.StrictEcho {
		return &Error{Kind: KindProtocol, Op: op, Err: mismatch}
	}
	c.log.WithContext(ctx).Warn("asr reply echo mismatch", logger.Fields(
		logger.FieldOperation, op,
		"checkcode", resp.Checkcode,
		"request_code", resp.RequestCode,
	))
	return nil
}
