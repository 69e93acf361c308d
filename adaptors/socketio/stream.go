package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/specialistvlad/sagago/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

var _ capability.Stream = (*Stream)(nil)

// Stream is a socket.io endpoint.
type Stream struct {
	url  *url.URL
	opts Options
}

// URL returns the bound URL.
func (s *Stream) URL() *url.URL { return s.url }

// Options returns the options parsed from the URL.
func (s *Stream) Options() Options { return s.opts }

// opResult passes the outcome through the done channel.
type opResult struct {
	value any
	err   error
}

// Request connects, emits req.EmitEvent once connected and waits for the
// first req.OnEvent. The connection is closed before returning.
func (s *Stream) Request(ctx context.Context, req capability.StreamRequest) (any, error) {
	if req.OnEvent == "" {
		return nil, errors.New("stream request needs an event to wait for")
	}
	logger := ctxlog.FromContext(ctx).With("adaptor", Name, "url", s.url.Redacted(), "onEvent", req.OnEvent, "emitEvent", req.EmitEvent)
	logger.Debug("Request started")
	defer logger.Debug("Request finished")

	timeout := s.opts.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	finish := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	baseURL := fmt.Sprintf("%s://%s", httpScheme(s.url.Scheme), s.url.Host)
	opts := socket.DefaultOptions()
	if s.url.Path != "" {
		opts.SetPath(s.url.Path)
	}
	if s.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.opts.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", s.opts.Namespace, "sid", io.Id())
		if req.EmitEvent != "" {
			jsonData, _ := json.Marshal(req.EmitData)
			logger.Info("Emitting event", "event", req.EmitEvent, "data", string(jsonData))
			io.Emit(req.EmitEvent, req.EmitData)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("socket.io connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("socket.io connection failed: %w", e)
			}
		}
		finish(opResult{err: err})
	})

	io.On(types.EventName(req.OnEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		finish(opResult{value: responseData})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", req.OnEvent)
		}
		return nil, errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// httpScheme maps ws/wss to the scheme the socket.io manager dials.
func httpScheme(scheme string) string {
	if scheme == "wss" {
		return "https"
	}
	return "http"
}
