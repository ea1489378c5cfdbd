// Package handlers provides Telnet session handling and command processing.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battletracker/internal/frontend/telnet"
	"github.com/cory-johannsen/battletracker/internal/game/command"
	"github.com/cory-johannsen/battletracker/internal/game/condition"
	"github.com/cory-johannsen/battletracker/internal/game/dice"
	"github.com/cory-johannsen/battletracker/internal/game/session"
	"github.com/cory-johannsen/battletracker/internal/observability"
)

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan + "  Battle Tracker" + telnet.Reset + "\r\n" +
	telnet.BrightYellow + "  Hit points, conditions and initiative for your table." + telnet.Reset + "\r\n\r\n" +
	"  Type " + telnet.Green + "new <fight>" + telnet.Reset + " to start tracking a fight.\r\n" +
	"  Type " + telnet.Green + "help" + telnet.Reset + " for every command.\r\n" +
	"  Type " + telnet.Green + "quit" + telnet.Reset + " to disconnect.\r\n"

// TrackerHandler implements telnet.SessionHandler. Each connection gets its
// own session and fight store.
type TrackerHandler struct {
	sessions   *session.Manager
	registry   *command.Registry
	conditions *condition.Registry
	roller     *dice.Roller
	logger     *zap.Logger
	now        func() time.Time
}

// HandlerOption configures a TrackerHandler.
type HandlerOption func(*TrackerHandler)

// WithClock replaces time.Now, for fight timers in tests.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *TrackerHandler) { h.now = now }
}

// NewTrackerHandler creates a TrackerHandler.
//
// Precondition: sessions, conditions, roller and logger must be non-nil.
// Postcondition: Returns a handler ready to serve sessions.
func NewTrackerHandler(
	sessions *session.Manager,
	conditions *condition.Registry,
	roller *dice.Roller,
	logger *zap.Logger,
	opts ...HandlerOption,
) *TrackerHandler {
	h := &TrackerHandler{
		sessions:   sessions,
		registry:   command.DefaultRegistry(),
		conditions: conditions,
		roller:     roller,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and runs the command loop until the client quits or disconnects.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
// The session and its fights are discarded either way.
func (h *TrackerHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := h.now()
	sess := h.sessions.Add(conn.RemoteAddr().String(), start)
	logger := observability.SessionLogger(h.logger, sess.ID, sess.RemoteAddr)
	defer func() {
		if err := h.sessions.Remove(sess.ID); err != nil {
			logger.Warn("removing session", zap.Error(err))
		}
		logger.Info("session closed",
			zap.Int("fights", sess.Store.Len()),
			zap.Duration("session_duration", h.now().Sub(start)),
		)
	}()

	logger.Info("session opened", zap.Int("active_sessions", h.sessions.Count()))
	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(prompt(sess)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if errors.Is(err, telnet.ErrLineTooLong) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Line too long."))
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		quit, err := h.dispatch(&consoleContext{
			h:      h,
			sess:   sess,
			conn:   conn,
			parsed: command.Parse(line),
			logger: logger,
		})
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// dispatch resolves and runs one parsed line.
//
// Postcondition: Returns quit=true after a clean quit; a non-nil error only
// when the connection failed.
func (h *TrackerHandler) dispatch(cctx *consoleContext) (bool, error) {
	parsed := cctx.parsed
	if parsed.Command == "" {
		return false, nil
	}
	cmd, ok := h.registry.Resolve(parsed.Command)
	if !ok {
		if matches := h.registry.Suggest(parsed.Command); len(matches) > 1 {
			return cctx.fail(fmt.Sprintf("Ambiguous command: %s (%s).", parsed.Command, strings.Join(matches, ", ")))
		}
		return cctx.fail(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", parsed.Command))
	}
	if parsed.Err != nil {
		return cctx.fail(fmt.Sprintf("%s: %v", cmd.Name, parsed.Err))
	}
	fn, ok := consoleHandlerMap[cmd.Handler]
	if !ok {
		cctx.logger.Error("command has no handler", zap.String("handler", cmd.Handler))
		return cctx.fail("That command is not available.")
	}
	cctx.cmd = cmd
	cctx.logger.Debug("command", zap.String("command", cmd.Name), zap.Strings("args", parsed.Args))
	return fn(cctx)
}

func prompt(sess *session.Session) string {
	if f, ok := sess.Current(); ok {
		return telnet.Colorf(telnet.BrightCyan, "[%s]> ", f.Name())
	}
	return telnet.Colorize(telnet.BrightWhite, "> ")
}
