package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/swishreport/swish/pkg/domain"
)

// fallbackMessage is shown when an error response carries no usable text.
const fallbackMessage = "request failed"

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client is the Swish Report API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests at r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with token. The copy
// shares the HTTP client and rate limiter.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// --- Auth ---

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok domain.TokenResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), &tok); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &tok, nil
}

// Signup creates an account and returns its first access token.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.TokenResponse, error) {
	var tok domain.TokenResponse
	if err := c.post(ctx, "/auth/signup", req, &tok); err != nil {
		return nil, fmt.Errorf("client.Signup: %w", err)
	}
	return &tok, nil
}

// --- Players ---

// ListNBAPlayers fetches a page of active NBA players.
func (c *Client) ListNBAPlayers(ctx context.Context, page, limit int) ([]domain.Player, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/nba/players"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var players []domain.Player
	if err := c.get(ctx, path, &players); err != nil {
		return nil, fmt.Errorf("client.ListNBAPlayers: %w", err)
	}
	return players, nil
}

// GetNBAPlayer fetches a single player profile by id.
func (c *Client) GetNBAPlayer(ctx context.Context, id string) (*domain.Player, error) {
	var p domain.Player
	if err := c.get(ctx, "/nba/players/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetNBAPlayer: %w", err)
	}
	return &p, nil
}

// ListHighSchoolProspects fetches the ranked high-school prospects with
// their scouting evaluations.
func (c *Client) ListHighSchoolProspects(ctx context.Context) ([]domain.Player, error) {
	var players []domain.Player
	if err := c.get(ctx, "/high-school/prospects", &players); err != nil {
		return nil, fmt.Errorf("client.ListHighSchoolProspects: %w", err)
	}
	return players, nil
}

// --- Community ---

// ListCommunityLineups fetches every saved lineup across users.
func (c *Client) ListCommunityLineups(ctx context.Context) ([]domain.Lineup, error) {
	var lineups []domain.Lineup
	if err := c.get(ctx, "/community/lineups", &lineups); err != nil {
		return nil, fmt.Errorf("client.ListCommunityLineups: %w", err)
	}
	return lineups, nil
}

// GetCommunityLineup fetches one lineup with its players and full report.
// The backend binds the id from the lineup_id query parameter, so it is
// sent in both places.
func (c *Client) GetCommunityLineup(ctx context.Context, id int) (*domain.Lineup, error) {
	sid := strconv.Itoa(id)
	params := url.Values{}
	params.Set("lineup_id", sid)

	var l domain.Lineup
	if err := c.get(ctx, "/community/lineups/"+sid+"?"+params.Encode(), &l); err != nil {
		return nil, fmt.Errorf("client.GetCommunityLineup: %w", err)
	}
	return &l, nil
}

// --- Games ---

// SubmitLineup sends a lineup for AI analysis.
func (c *Client) SubmitLineup(ctx context.Context, sub domain.LineupSubmission) (*domain.AnalysisReport, error) {
	var report domain.AnalysisReport
	if err := c.post(ctx, "/games/lineup-builder/submit-lineup", sub, &report); err != nil {
		return nil, fmt.Errorf("client.SubmitLineup: %w", err)
	}
	return &report, nil
}

// SubmitComparison sends two players for a head-to-head comparison.
func (c *Client) SubmitComparison(ctx context.Context, sub domain.ComparisonSubmission) (*domain.AnalysisReport, error) {
	var report domain.AnalysisReport
	if err := c.post(ctx, "/games/player-comparison/submit-comparison", sub, &report); err != nil {
		return nil, fmt.Errorf("client.SubmitComparison: %w", err)
	}
	return &report, nil
}

// SubmitMatchup sends two full rosters for a simulated game.
func (c *Client) SubmitMatchup(ctx context.Context, sub domain.MatchupSubmission) (*domain.AnalysisReport, error) {
	var report domain.AnalysisReport
	if err := c.post(ctx, "/games/simulated-matchups/submit-matchup", sub, &report); err != nil {
		return nil, fmt.Errorf("client.SubmitMatchup: %w", err)
	}
	return &report, nil
}

// --- User ---

// GetUsername returns the display name for the account behind email.
func (c *Client) GetUsername(ctx context.Context, email string) (string, error) {
	var p domain.UserProfile
	if err := c.get(ctx, "/user/get-username/"+url.PathEscape(email), &p); err != nil {
		return "", fmt.Errorf("client.GetUsername: %w", err)
	}
	return p.Username, nil
}

// ListUserLineups returns the lineups saved by the user.
func (c *Client) ListUserLineups(ctx context.Context, email string) ([]domain.Lineup, error) {
	var lineups []domain.Lineup
	if err := c.get(ctx, "/user/lineup-builder/"+url.PathEscape(email), &lineups); err != nil {
		return nil, fmt.Errorf("client.ListUserLineups: %w", err)
	}
	return lineups, nil
}

// ListUserHotTakes returns the hot takes posted by the user.
func (c *Client) ListUserHotTakes(ctx context.Context, email string) ([]domain.HotTake, error) {
	var takes []domain.HotTake
	if err := c.get(ctx, "/user/hot-takes/"+url.PathEscape(email), &takes); err != nil {
		return nil, fmt.Errorf("client.ListUserHotTakes: %w", err)
	}
	return takes, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reqBody, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts a human-readable message from an error body.
// FastAPI puts it in "detail"; validation errors make "detail" a list.
func errorMessage(body []byte) string {
	var apiErr struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if msg := detailText(apiErr.Detail); msg != "" {
			return msg
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
		return fallbackMessage
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fallbackMessage
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
