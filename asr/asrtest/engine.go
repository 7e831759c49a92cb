// Package asrtest runs an in-process ASR engine on a loopback port for
// tests and for offline smoke checks.
package asrtest

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Request is what the engine read from one connection.
type Request struct {
	Checkcode   int32
	RequestCode int32
	Format      uint8
	Audio       []byte
}

// Handler produces the raw reply for a request. A nil reply keeps the
// connection open without answering until the client hangs up.
type Handler func(req Request) []byte

// Engine is a fake ASR engine listening on 127.0.0.1.
type Engine struct {
	ln        net.Listener
	checkcode int32
	handler   Handler

	mu       sync.Mutex
	requests []Request
	accepted atomic.Int64
	hangups  chan struct{}
	wg       sync.WaitGroup
	closing  chan struct{}
}

// Start listens on a free loopback port. Requests whose checkcode differs
// from checkcode get status 1 and pings get status 0, as the real engine
// does; everything else goes to handler.
func Start(checkcode int32, handler Handler) (*Engine, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	e := &Engine{
		ln:        ln,
		checkcode: checkcode,
		handler:   handler,
		hangups:   make(chan struct{}, 64),
		closing:   make(chan struct{}),
	}
	e.wg.Add(1)
	go e.serve()
	return e, nil
}

// Host is the listening host.
func (e *Engine) Host() string { return "127.0.0.1" }

// Port is the listening port.
func (e *Engine) Port() int { return e.ln.Addr().(*net.TCPAddr).Port }

// Addr is host:port.
func (e *Engine) Addr() string { return net.JoinHostPort(e.Host(), strconv.Itoa(e.Port())) }

// Accepted counts connections accepted so far.
func (e *Engine) Accepted() int { return int(e.accepted.Load()) }

// Requests returns the requests read so far.
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Request(nil), e.requests...)
}

// WaitHangup waits for a client to close a connection the engine left
// unanswered. It reports false on timeout.
func (e *Engine) WaitHangup(timeout time.Duration) bool {
	select {
	case <-e.hangups:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close stops the listener and waits for open connections to finish.
func (e *Engine) Close() error {
	close(e.closing)
	err := e.ln.Close()
	e.wg.Wait()
	return err
}

func (e *Engine) serve() {
	defer e.wg.Done()
	for {
		conn, err := e.ln.Accept()
		if err != nil {
			return
		}
		e.accepted.Add(1)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.handle(conn)
		}()
	}
}

func (e *Engine) handle(conn net.Conn) {
	defer conn.Close()
	go func() {
		<-e.closing
		_ = conn.SetDeadline(time.Unix(1, 0))
	}()

	req, err := readRequest(conn)
	if err != nil {
		return
	}
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()

	var reply []byte
	switch {
	case req.Checkcode != e.checkcode:
		reply = StatusReply(e.checkcode, req.RequestCode, 1)
	case req.RequestCode == 99:
		reply = StatusReply(e.checkcode, req.RequestCode, 0)
	case e.handler != nil:
		reply = e.handler(req)
	}

	if reply == nil {
		// Silent: wait for the client to give up.
		if _, err := io.Copy(io.Discard, conn); err == nil {
			select {
			case e.hangups <- struct{}{}:
			default:
			}
		}
		return
	}
	_, _ = conn.Write(reply)
}

func readRequest(r io.Reader) (Request, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}
	req := Request{
		Checkcode:   int32(binary.BigEndian.Uint32(hdr[0:4])),
		RequestCode: int32(binary.BigEndian.Uint32(hdr[4:8])),
	}
	if req.RequestCode != 1 {
		return req, nil
	}

	var body [5]byte
	if _, err := io.ReadFull(r, body[:]); err != nil {
		return req, err
	}
	req.Format = body[0]
	n := int32(binary.BigEndian.Uint32(body[1:5]))
	if n < 0 {
		return req, errors.New("negative audio length")
	}
	req.Audio = make([]byte, n)
	if _, err := io.ReadFull(r, req.Audio); err != nil {
		return req, err
	}
	return req, nil
}

// StatusReply builds a 9-byte status-only reply.
func StatusReply(checkcode, requestCode int32, status uint8) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint32(buf[0:4], uint32(checkcode))
	binary.BigEndian.PutUint32(buf[4:8], uint32(requestCode))
	buf[8] = status
	return buf
}

// TextReply builds a status 0 reply carrying text.
func TextReply(checkcode, requestCode int32, text string) []byte {
	buf := make([]byte, 13+len(text))
	copy(buf, StatusReply(checkcode, requestCode, 0))
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(text)))
	copy(buf[13:], text)
	return buf
}

// Text answers every request with text.
func Text(text string) Handler {
	return func(req Request) []byte { return TextReply(req.Checkcode, req.RequestCode, text) }
}

// Status answers every request with a status-only reply.
func Status(status uint8) Handler {
	return func(req Request) []byte { return StatusReply(req.Checkcode, req.RequestCode, status) }
}

// Raw answers every request with b verbatim.
func Raw(b []byte) Handler {
	return func(Request) []byte { return b }
}

// Silent never answers.
func Silent() Handler {
	return func(Request) []byte { return nil }
}
