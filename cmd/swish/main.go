package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/swishreport/swish/internal/browser"
	"github.com/swishreport/swish/internal/config"
	"github.com/swishreport/swish/internal/logger"
	"github.com/swishreport/swish/internal/session"
	"github.com/swishreport/swish/internal/tui"
	"github.com/swishreport/swish/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// loginTimeout bounds how long `swish login` waits for the browser callback.
const loginTimeout = 2 * time.Minute

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// deps is everything a subcommand needs, built once from the environment.
type deps struct {
	cfg    *config.Config
	log    *slog.Logger
	client *client.Client
	guard  *session.Guard
}

func setup() (*deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var logOut io.Writer
	closeLog := func() {}
	if err := os.MkdirAll(cfg.Home, 0700); err == nil {
		if f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
			logOut = f
			closeLog = func() { f.Close() } //nolint:errcheck
		}
	}
	log := logger.SetupDefault(logOut, cfg.LogLevel)

	store := session.NewEnvStore(session.NewFileStore(cfg.Home), cfg.TokenOverride, cfg.EmailOverride)
	c := client.New(cfg.APIURL, "",
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		client.WithLogger(log),
	)
	g := session.NewGuard(store, session.WithGuardLogger(log))

	return &deps{cfg: cfg, log: log, client: c, guard: g}, closeLog, nil
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("swish " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	d, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	if len(args) > 0 {
		switch args[0] {
		case "login":
			return runLogin(d)
		case "logout":
			return runLogout(d, os.Stdout)
		case "status":
			return runStatus(d, os.Stdout)
		default:
			return fmt.Errorf("unknown command %q (try `swish help`)", args[0])
		}
	}

	if res, _ := d.guard.Check(); res.Signal.NeedsLogin() {
		printGreeting(res.Signal)
	}
	return runTUI(d)
}

func runTUI(d *deps) error {
	app := tui.NewApp(tui.Options{
		Client:  d.client,
		Guard:   d.guard,
		WebURL:  d.cfg.WebURL,
		Timeout: d.cfg.RequestTimeout,
		Logger:  d.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// loginURL builds the web login page address that redirects back to the
// local callback on port.
func loginURL(webURL string, port int, state string) string {
	params := url.Values{}
	params.Set("cli_port", strconv.Itoa(port))
	params.Set("state", state)
	return webURL + "/auth/google/login?" + params.Encode()
}

// callbackHandler serves /callback for the browser redirect carrying the
// CSRF state and the issued token. The token's subject becomes the stored
// identity. Requests with a foreign state are refused without ending the
// login; only the first outcome is delivered and later requests never block.
func callbackHandler(expectedState string, log *slog.Logger, credsCh chan<- session.Credentials, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != expectedState {
			log.Warn("callback state mismatch, ignoring request", "remote", r.RemoteAddr)
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		tok := q.Get("token")
		if tok == "" {
			http.Error(w, "missing token", http.StatusBadRequest)
			offer(errCh, errors.New("callback received without token"))
			return
		}
		identity, err := session.Subject(tok)
		if err != nil {
			http.Error(w, "unreadable token", http.StatusBadRequest)
			offer(errCh, fmt.Errorf("callback token: %w", err))
			return
		}
		if !offer(credsCh, session.Credentials{Token: tok, Identity: identity}) {
			log.Debug("duplicate callback ignored")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, callbackHTML) //nolint:errcheck
	})
	return mux
}

// offer sends v unless ch is full.
func offer[T any](ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

func runLogin(d *deps) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return fmt.Errorf("generate oauth state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	credsCh := make(chan session.Credentials, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, d.log, credsCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			offer(errCh, srvErr)
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	target := loginURL(d.cfg.WebURL, port, state)
	fmt.Println("Opening browser to sign in with Google...")
	if err := browser.Open(target); err != nil {
		fmt.Printf("Could not open browser. Visit this URL manually:\n  %s\n", target)
	}

	select {
	case creds := <-credsCh:
		if err := d.guard.Store().Set(creds); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if _, err := d.guard.Authorize(); err != nil {
			return fmt.Errorf("login returned an unusable session: %w", err)
		}
		d.log.Info("signed in", "identity", creds.Identity, "method", "oauth")
		fmt.Printf("Signed in as %s\n\n", creds.Identity)
		return runTUI(d)

	case err := <-errCh:
		return fmt.Errorf("callback server error: %w", err)

	case <-time.After(loginTimeout):
		return errors.New("login timed out, no callback received within 2 minutes")
	}
}

func runLogout(d *deps, w io.Writer) error {
	creds, err := d.guard.Store().Get()
	if err == nil && creds.Token == "" && creds.Identity == "" {
		fmt.Fprintln(w, "Already signed out.")
		return nil
	}
	if err := d.guard.Store().Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	d.log.Info("signed out")
	fmt.Fprintln(w, "Signed out.")
	return nil
}

func runStatus(d *deps, w io.Writer) error {
	res, err := d.guard.Check()
	printStatus(w, res)
	return err
}

func printStatus(w io.Writer, res session.Result) {
	fmt.Fprintf(w, "session:  %s\n", res.Signal)
	if res.Signal != session.Valid {
		if res.Signal != session.Unauthenticated {
			fmt.Fprintln(w, "the stored session was cleared")
		}
		fmt.Fprintln(w, "run `swish login` or start `swish` to sign in")
		return
	}
	fmt.Fprintf(w, "identity: %s\n", res.Credentials.Identity)
	fmt.Fprintf(w, "expires:  %s (in %s)\n",
		res.ExpiresAt.Local().Format(time.RFC1123),
		time.Until(res.ExpiresAt).Round(time.Minute))
}

const callbackHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Swish Report</title>
<style>
body{background:#0b0b0f;color:#f4f4f5;font-family:'JetBrains Mono',monospace;
height:100vh;display:flex;align-items:center;justify-content:center;margin:0}
.logo{font-size:32px;font-weight:700;letter-spacing:12px;color:#f97316;margin-bottom:20px}
.msg{font-size:14px;color:#34d474;font-weight:600;margin-bottom:8px}
.sub{font-size:12px;color:#71717a}
</style>
</head>
<body>
<div style="text-align:center">
  <div class="logo">SWISH</div>
  <div class="msg">signed in</div>
  <div class="sub">return to your terminal</div>
</div>
</body>
</html>`
