package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sentinel errors matching the non-valid guard signals.
var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrInvalidSession  = errors.New("session is invalid")
	ErrExpired         = errors.New("session has expired")
)

// Signal is the outcome of a session check.
type Signal int

const (
	Unauthenticated Signal = iota
	InvalidSession
	Expired
	Valid
)

func (s Signal) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidSession:
		return "invalid_session"
	case Expired:
		return "expired"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Err returns the sentinel for s, or nil for Valid.
func (s Signal) Err() error {
	switch s {
	case Unauthenticated:
		return ErrUnauthenticated
	case InvalidSession:
		return ErrInvalidSession
	case Expired:
		return ErrExpired
	}
	return nil
}

// NeedsLogin reports whether the holder must be sent to the login view.
func (s Signal) NeedsLogin() bool {
	return s != Valid
}

// Result is a completed check: the signal plus what was read.
type Result struct {
	Signal      Signal
	Credentials Credentials
	ExpiresAt   time.Time
}

// Guard decides whether the stored session may be used. It never contacts
// the backend; the backend re-validates every request anyway.
type Guard struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// WithGuardLogger sets the logger used when a session is cleared.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard returns a guard over store.
func NewGuard(store Store, opts ...GuardOption) *Guard {
	g := &Guard{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the store the guard reads.
func (g *Guard) Store() Store {
	return g.store
}

// Check reads the store and classifies the session. On InvalidSession and
// Expired the store is cleared before returning. A store read failure is
// treated as Unauthenticated and returned alongside.
func (g *Guard) Check() (Result, error) {
	creds, err := g.store.Get()
	if err != nil {
		return Result{Signal: Unauthenticated}, fmt.Errorf("session.Guard.Check: %w", err)
	}
	if !creds.Complete() {
		return Result{Signal: Unauthenticated}, nil
	}

	claims, err := Decode(creds.Token)
	if err != nil {
		return g.reject(InvalidSession, err.Error())
	}
	if claims.ExpiresAt.UnixMilli() < g.now().UnixMilli() {
		return g.reject(Expired, "exp "+claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return Result{Signal: Valid, Credentials: creds, ExpiresAt: claims.ExpiresAt}, nil
}

// Authorize is Check reduced to the credentials or the signal's sentinel
// error, for callers that only need to proceed or stop.
func (g *Guard) Authorize() (Credentials, error) {
	res, err := g.Check()
	if err != nil {
		return Credentials{}, err
	}
	if res.Signal != Valid {
		return Credentials{}, res.Signal.Err()
	}
	return res.Credentials, nil
}

func (g *Guard) reject(sig Signal, reason string) (Result, error) {
	g.logger.Info("clearing session", "signal", sig.String(), "reason", reason)
	if err := g.store.Clear(); err != nil {
		return Result{Signal: sig}, fmt.Errorf("session.Guard.Check: clear: %w", err)
	}
	return Result{Signal: sig}, nil
}
