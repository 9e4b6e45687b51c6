package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"jobsync-engine/internal/domain"
)

var ErrUnauthorized = errors.New("backend rejected credentials")

// Client talks to the job-listings backend under /api/v1.
type Client struct {
	BaseURL string
	hc      *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

type signInRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type signInResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Email   string `json:"email"`
	Error   string `json:"error"`
}

// SignIn exchanges credentials for an opaque auth token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var body signInRequest
	body.User.Email = email
	body.User.Password = password

	var out signInResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/sign_in", "", body, &out); err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if !out.Success || strings.TrimSpace(out.Token) == "" {
		return "", fmt.Errorf("sign in: %w", ErrUnauthorized)
	}
	return out.Token, nil
}

type wirePreferences struct {
	AutoSearchEnabled bool `json:"auto_search_enabled"`
	JobTitles         []struct {
		Title    string `json:"title"`
		Priority int    `json:"priority"`
	} `json:"job_title_preferences"`
	Locations []struct {
		City     string `json:"city"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Priority int    `json:"priority"`
	} `json:"location_preferences"`
	Industries []struct {
		Industry      string `json:"industry"`
		IsBlacklisted bool   `json:"is_blacklisted"`
		Priority      int    `json:"priority"`
	} `json:"industry_preferences"`
}

type ranked struct {
	v string
	p int
}

func byPriority(in []ranked) []string {
	sort.SliceStable(in, func(i, j int) bool { return in[i].p < in[j].p })
	out := make([]string, 0, len(in))
	for _, r := range in {
		if strings.TrimSpace(r.v) != "" {
			out = append(out, strings.TrimSpace(r.v))
		}
	}
	return out
}

func (w wirePreferences) toDomain() domain.Preferences {
	var titles, locs, inds []ranked
	for _, t := range w.JobTitles {
		titles = append(titles, ranked{t.Title, t.Priority})
	}
	for _, l := range w.Locations {
		var parts []string
		for _, s := range []string{l.City, l.State, l.Country} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		locs = append(locs, ranked{strings.Join(parts, ", "), l.Priority})
	}
	for _, i := range w.Industries {
		if i.IsBlacklisted {
			continue
		}
		inds = append(inds, ranked{i.Industry, i.Priority})
	}
	return domain.Preferences{
		AutoSearchEnabled: w.AutoSearchEnabled,
		JobTitles:         byPriority(titles),
		Locations:         byPriority(locs),
		Industries:        byPriority(inds),
	}
}

// SearchPreferences fetches the user's saved search preferences,
// ordered by priority with blacklisted industries dropped.
func (c *Client) SearchPreferences(ctx context.Context, token string) (domain.Preferences, error) {
	var w wirePreferences
	if err := c.do(ctx, http.MethodGet, "/api/v1/search_preferences", token, nil, &w); err != nil {
		return domain.Preferences{}, fmt.Errorf("search preferences: %w", err)
	}
	return w.toDomain(), nil
}

type batchRequest struct {
	JobListings []domain.Listing `json:"job_listings"`
}

// SubmitBatch posts listings in one request. Failures are returned, never retried.
func (c *Client) SubmitBatch(ctx context.Context, token string, ls []domain.Listing) (domain.BatchResult, error) {
	var out domain.BatchResult
	if len(ls) == 0 {
		return out, nil
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/job_listings/batch", token, batchRequest{JobListings: ls}, &out); err != nil {
		return domain.BatchResult{}, fmt.Errorf("submit batch: %w", err)
	}
	return out, nil
}

// StatusError is a non-2xx backend reply.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend status %d", e.Code)
	}
	return fmt.Sprintf("backend status %d: %s", e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "JobSync/1.0 (+local)")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if res.StatusCode >= 400 {
		return &StatusError{Code: res.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls a readable message out of the error bodies the
// backend and the local API produce.
func errorMessage(raw []byte) string {
	var m struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(raw, &m) != nil {
		return strings.TrimSpace(string(raw))
	}
	if m.Message != "" {
		return m.Message
	}
	var s string
	if json.Unmarshal(m.Error, &s) == nil {
		return s
	}
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(m.Error, &env) == nil {
		return env.Message
	}
	return ""
}
