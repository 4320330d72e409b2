package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/adapters/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades every request and sends each frame back.
func echoServer(t *testing.T, opts ...websocket.Option) string {
	t.Helper()
	up := websocket.NewUpgrader(func(*http.Request) bool { return true }, opts...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			frame, err := conn.ReadFrame()
			if err != nil {
				return
			}
			if string(frame) == "bye" {
				return
			}
			if err := conn.WriteFrame(frame); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConn_Echo(t *testing.T) {
	url := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, f := range []string{`{"Action":"save","Name":"a"}`, `{"Action":"load","Name":"a"}`} {
		require.NoError(t, conn.WriteFrame([]byte(f)))
		got, err := conn.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, f, string(got))
	}
}

func TestConn_KeepaliveWhileIdle(t *testing.T) {
	url := echoServer(t, websocket.WithPingInterval(20*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := websocket.Dial(ctx, url, nil, websocket.WithPingInterval(20*time.Millisecond))
	require.NoError(t, err)
	defer conn.Close()

	frames := make(chan string, 1)
	go func() {
		for {
			f, err := conn.ReadFrame()
			if err != nil {
				close(frames)
				return
			}
			frames <- string(f)
		}
	}()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, conn.WriteFrame([]byte("still here")))
	select {
	case f, ok := <-frames:
		require.True(t, ok, "connection dropped while idle")
		assert.Equal(t, "still here", f)
	case <-time.After(time.Second):
		t.Fatal("no echo")
	}
}

func TestConn_PeerCloseEndsRead(t *testing.T) {
	url := echoServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteFrame([]byte("bye")))
	_, err = conn.ReadFrame()
	assert.Error(t, err)
	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close(), "close is idempotent")
}

func TestDial_Refused(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := websocket.Dial(ctx, "ws://127.0.0.1:1/socket", nil)
	assert.ErrorContains(t, err, "failed to dial")
}
