package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	errs "github.com/milops/asset-console/internal/errors"
	"github.com/milops/asset-console/internal/obs"
)

// TokenStore is the session-owned credential storage the transport reads
// before every request and rewrites during a refresh exchange. Lock/Unlock
// guard the exchange itself: concurrent requests that each observe a 401
// serialise here and all reuse the first successful refresh.
type TokenStore interface {
	sync.Locker
	Tokens() (accessToken, refreshToken string)
	SetTokens(accessToken, refreshToken string)
	Clear()
}

type ctxKey int

const tokenStoreKey ctxKey = iota

// ContextWithTokens attaches the per-session token store to a request
// context. Requests without a store go out unauthenticated.
func ContextWithTokens(ctx context.Context, store TokenStore) context.Context {
	return context.WithValue(ctx, tokenStoreKey, store)
}

// TokensFromContext retrieves the token store attached by ContextWithTokens.
func TokensFromContext(ctx context.Context) (TokenStore, bool) {
	store, ok := ctx.Value(tokenStoreKey).(TokenStore)
	return store, ok
}

// refreshTransport injects the bearer token and performs at most one
// refresh-and-retry cycle when the backend answers 401. Every other
// response, including a second 401 after the retry, passes through
// untouched.
type refreshTransport struct {
	base       http.RoundTripper
	refreshURL string
}

func newRefreshTransport(base http.RoundTripper, refreshURL string) *refreshTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &refreshTransport{base: base, refreshURL: refreshURL}
}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	store, hasStore := TokensFromContext(req.Context())

	var access string
	if hasStore {
		access, _ = store.Tokens()
	}

	resp, err := t.send(req.Clone(req.Context()), access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !hasStore {
		return resp, nil
	}
	if req.URL.String() == t.refreshURL {
		return resp, nil
	}
	return t.refreshAndRetry(req, resp, store, access)
}

// refreshAndRetry runs the single refresh cycle for an original request
// that came back 401. The returned response is either the replayed call's
// response or the original 401 when no recovery is possible.
func (t *refreshTransport) refreshAndRetry(req *http.Request, orig *http.Response, store TokenStore, sentAccess string) (*http.Response, error) {
	store.Lock()
	access, refresh := store.Tokens()
	if access != sentAccess && access != "" {
		// Another request on this session already completed a refresh
		// while we waited on the lock; reuse its token.
		store.Unlock()
		return t.retry(req, orig, access)
	}
	if refresh == "" {
		store.Clear()
		store.Unlock()
		return orig, nil
	}

	pair, err := t.exchange(req.Context(), refresh)
	if err != nil {
		store.Clear()
		store.Unlock()
		obs.CountTokenRefresh("failed")
		closeBody(orig)
		return nil, fmt.Errorf("%w: %s", errs.ErrRefreshFailed, err)
	}
	store.SetTokens(pair.Token, pair.RefreshToken)
	store.Unlock()
	obs.CountTokenRefresh("ok")

	return t.retry(req, orig, pair.Token)
}

// retry replays the original request once with a fresh access token.
func (t *refreshTransport) retry(req *http.Request, orig *http.Response, access string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return orig, nil
		}
		clone.Body = body
	} else if req.Body != nil {
		// The body was already consumed and cannot be replayed.
		return orig, nil
	}
	closeBody(orig)
	return t.send(clone, access)
}

func (t *refreshTransport) send(req *http.Request, access string) (*http.Response, error) {
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	} else {
		req.Header.Del("Authorization")
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		obs.ObserveBackendCall(req.Method, resp.StatusCode, time.Since(start))
	}
	return resp, err
}

// exchange swaps the refresh token for a new pair via the dedicated
// refresh endpoint. It talks to the base transport directly so the
// exchange itself can never recurse into another refresh cycle.
func (t *refreshTransport) exchange(ctx context.Context, refreshToken string) (AuthResponse, error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return AuthResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return AuthResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return AuthResponse{}, err
	}
	obs.ObserveBackendCall(req.Method, resp.StatusCode, time.Since(start))
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return AuthResponse{}, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var pair AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return AuthResponse{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if pair.Token == "" || pair.RefreshToken == "" {
		return AuthResponse{}, errs.ErrInvalidRefreshToken
	}
	return pair, nil
}

const maxErrorBody = 4096

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
