package telnet

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/battletracker/internal/config"
)

// echoHandler is a test SessionHandler that echoes lines back to the client.
type echoHandler struct {
	sessionCount atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessionCount.Add(1)
	_ = conn.WriteLine("ready")
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteLine("bye")
			return nil
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

func testTelnetConfig(maxConns int) config.TelnetConfig {
	return config.TelnetConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxConnections: maxConns,
		MaxLineLength:  256,
	}
}

// startAcceptor serves on a loopback listener and stops the acceptor at cleanup.
func startAcceptor(t *testing.T, cfg config.TelnetConfig, h SessionHandler) (*Acceptor, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	acc := NewAcceptor(cfg, h, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() {
		errCh <- acc.Serve(ln)
	}()
	require.Eventually(t, acc.IsRunning, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(acc.Stop)
	return acc, errCh
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn, bufio.NewReader(conn)
}

func readUntil(t *testing.T, r *bufio.Reader, substr string) string {
	t.Helper()
	var sb strings.Builder
	for !strings.Contains(sb.String(), substr) {
		b, err := r.ReadByte()
		require.NoError(t, err, "waiting for %q, got %q", substr, sb.String())
		sb.WriteByte(b)
	}
	return sb.String()
}

func TestAcceptorStartAndStop(t *testing.T) {
	handler := &echoHandler{}
	acc, errCh := startAcceptor(t, testTelnetConfig(0), handler)

	conn, r := dial(t, acc.Addr())
	readUntil(t, r, "ready")

	_, err := conn.Write([]byte("hello\r\n"))
	require.NoError(t, err)
	readUntil(t, r, "echo: hello")

	_, _ = conn.Write([]byte("quit\r\n"))
	readUntil(t, r, "bye")
	conn.Close()

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.False(t, acc.IsRunning())
	assert.Equal(t, int32(1), handler.sessionCount.Load())
}

func TestAcceptorMultipleClients(t *testing.T) {
	handler := &echoHandler{}
	acc, _ := startAcceptor(t, testTelnetConfig(0), handler)

	const numClients = 3
	for range numClients {
		conn, r := dial(t, acc.Addr())
		readUntil(t, r, "ready")
		_, _ = conn.Write([]byte("quit\r\n"))
		readUntil(t, r, "bye")
	}

	require.Eventually(t, func() bool { return acc.ActiveSessions() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(numClients), handler.sessionCount.Load())
}

func TestAcceptor_RejectsOverCapacity(t *testing.T) {
	handler := &echoHandler{}
	acc, _ := startAcceptor(t, testTelnetConfig(1), handler)

	_, r1 := dial(t, acc.Addr())
	readUntil(t, r1, "ready")

	_, r2 := dial(t, acc.Addr())
	out := readUntil(t, r2, FullMessage)
	assert.NotContains(t, out, "ready")
	assert.Equal(t, int32(1), handler.sessionCount.Load())
	assert.Equal(t, 1, acc.ActiveSessions())
}

func TestAcceptor_StopClosesIdleSessions(t *testing.T) {
	handler := &echoHandler{}
	acc, _ := startAcceptor(t, testTelnetConfig(0), handler)

	_, r := dial(t, acc.Addr())
	readUntil(t, r, "ready")

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on an idle session")
	}
	assert.Equal(t, 0, acc.ActiveSessions())
}

func TestAcceptor_ListenAndServeBadAddr(t *testing.T) {
	cfg := testTelnetConfig(0)
	cfg.Host = "256.256.256.256"
	acc := NewAcceptor(cfg, &echoHandler{}, zaptest.NewLogger(t))
	assert.Error(t, acc.ListenAndServe())
}
