package socketio

import (
	"context"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Options{Namespace: "/", Timeout: DefaultTimeout}, opts)

	opts, err = ParseOptions(url.Values{"namespace": {"/chat"}, "timeout": {"2s"}, "insecure": {"true"}})
	require.NoError(t, err)
	assert.Equal(t, Options{Namespace: "/chat", Timeout: 2 * time.Second, InsecureSkipVerify: true}, opts)

	_, err = ParseOptions(url.Values{"timeout": {"soon"}})
	assert.ErrorContains(t, err, "invalid timeout")

	_, err = ParseOptions(url.Values{"insecure": {"maybe"}})
	assert.ErrorContains(t, err, "invalid insecure flag")
}

func TestFactory(t *testing.T) {
	claims, err := (&Module{}).Claims()
	require.NoError(t, err)
	require.Len(t, claims, 2)

	u, _ := url.Parse("ws://localhost:9/socket.io/?namespace=/ns")
	inst, err := claims[0].Factory(context.Background(), u, nil)
	require.NoError(t, err, "construction must not touch the network")
	s, ok := inst.(capability.Stream)
	require.True(t, ok)
	assert.Equal(t, "/ns", s.(*Stream).Options().Namespace)

	u, _ = url.Parse("ws:///no-host")
	_, err = claims[0].Factory(context.Background(), u, nil)
	assert.True(t, adaptor.IsDecline(err))
}

func TestRequest_RequiresEvent(t *testing.T) {
	s := &Stream{url: &url.URL{Scheme: "ws", Host: "localhost"}, opts: Options{Namespace: "/", Timeout: time.Second}}
	_, err := s.Request(context.Background(), capability.StreamRequest{})
	assert.Error(t, err)
}

func TestRequest_UnreachableEndpointFails(t *testing.T) {
	// Reserve a port and release it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := &Stream{url: &url.URL{Scheme: "ws", Host: addr}, opts: Options{Namespace: "/", Timeout: 500 * time.Millisecond}}
	_, err = s.Request(context.Background(), capability.StreamRequest{OnEvent: "pong"})
	assert.Error(t, err)
}

func TestHTTPScheme(t *testing.T) {
	assert.Equal(t, "http", httpScheme("ws"))
	assert.Equal(t, "https", httpScheme("wss"))
}
