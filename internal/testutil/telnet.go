// Package testutil provides helpers for integration tests against the Telnet console.
package testutil

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/battletracker/internal/frontend/telnet"
)

// DefaultTimeout bounds every read in ReadUntil and Command.
const DefaultTimeout = 3 * time.Second

// promptPattern matches a console prompt at the start of a line: "> " or "[fight]> ".
var promptPattern = regexp.MustCompile(`(?:^|\n)(?:\[[^\]\n]*\])?> `)

// TelnetClient is a simple Telnet test client for integration testing.
// It keeps unread output between calls so successive expectations see the
// stream in order.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	buffer  string
	pending string
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the ANSI-stripped output or timeout
// elapses. It returns the stripped output up to and including the match and
// keeps the remainder for the next call.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the output ending in substr, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	return c.readMatch(substr, timeout, func(s string) int {
		idx := strings.Index(s, substr)
		if idx < 0 {
			return -1
		}
		return idx + len(substr)
	})
}

// ReadPrompt reads through the next console prompt and returns everything
// before it.
func (c *TelnetClient) ReadPrompt(timeout time.Duration) string {
	c.t.Helper()
	out := c.readMatch("prompt", timeout, func(s string) int {
		loc := promptPattern.FindStringIndex(s)
		if loc == nil {
			return -1
		}
		return loc[1]
	})
	loc := promptPattern.FindStringIndex(out)
	return out[:loc[0]]
}

// readMatch reads until match reports the end offset of what to consume.
func (c *TelnetClient) readMatch(desc string, timeout time.Duration, match func(string) int) string {
	c.t.Helper()
	if end := match(c.buffer); end >= 0 {
		return c.consume(end)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.absorb(string(tmp[:n]))
			if end := match(c.buffer); end >= 0 {
				return c.consume(end)
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %s: got %q, error: %v", desc, c.buffer, err)
		}
	}
}

// absorb strips ANSI codes from data, holding back an escape sequence split
// across reads.
func (c *TelnetClient) absorb(data string) {
	data = c.pending + data
	c.pending = ""
	if i := strings.LastIndexByte(data, '\033'); i >= 0 && !strings.Contains(data[i:], "m") {
		c.pending = data[i:]
		data = data[:i]
	}
	c.buffer += telnet.StripANSI(data)
}

func (c *TelnetClient) consume(end int) string {
	out := c.buffer[:end]
	c.buffer = c.buffer[end:]
	return out
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
// Postcondition: text + \r\n is written to the connection.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Command sends line and returns the ANSI-stripped output written before the
// next prompt.
func (c *TelnetClient) Command(line string) string {
	c.t.Helper()
	c.Send(line)
	return c.ReadPrompt(DefaultTimeout)
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
