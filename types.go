package tourbase

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger takes a message followed by alternating key-value pairs, the
// same shape log/slog uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*User, string, error)
	SessionFromToken(token string) (*SessionClaims, error)
	IdentityFromSession(ctx context.Context, session *SessionClaims) (*User, error)
}

// Messenger delivers a message out-of-band, normally email. Failures are
// surfaced as DeliveryFailure errors; the caller owns any compensation.
type Messenger interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetAuthScheme() string
	GetContextKey() string
	GetEnvironment() string
}

// defLogger writes to stdout unless out says otherwise.
type defLogger struct {
	out io.Writer
}

func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }

func (d defLogger) Warn(msg string, args ...any) { d.print("WRN", msg, args) }

func (d defLogger) Info(msg string, args ...any) { d.print("INF", msg, args) }

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }

func (d defLogger) print(level, msg string, args []any) {
	w := d.out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, formatLogLine(level, msg, args))
}

// formatLogLine renders the message followed by key=value pairs. A
// dangling key with no value is tagged the way slog tags bad keys.
func formatLogLine(level, msg string, args []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] AUTH %s", level, msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " !BADKEY=%v", args[i])
		}
	}
	return b.String()
}
