package auth

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/botworkspace/googlelink/internal/instrumentation"
	"github.com/botworkspace/googlelink/internal/logging"
	"github.com/botworkspace/googlelink/internal/store"
)

// persistingTokenSource wraps an oauth2.TokenSource and persists the
// rotated refresh token whenever Google issues one during a refresh.
// The write happens synchronously inside Token, before the new token is
// handed to the transport, so a rotation is never observed and then
// lost. Persistence failures are logged, not returned: the API call the
// user is waiting on must not break because a bookkeeping write failed.
type persistingTokenSource struct {
	ctx     context.Context
	src     oauth2.TokenSource
	store   store.Store
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	phone   string
	current string // last refresh token known to be persisted
}

func (ts *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.src.Token()
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Google only includes a refresh token in the response when it
	// rotated it. An empty one means the stored token is still valid.
	if tok.RefreshToken != "" && tok.RefreshToken != ts.current {
		if err := ts.store.UpsertRefreshToken(ts.ctx, ts.phone, tok.RefreshToken); err != nil {
			ts.metrics.RecordTokenRotation(ts.ctx, instrumentation.ResultFailure)
			ts.logger.Error("failed to persist rotated refresh token",
				logging.UserHash(ts.phone), logging.Err(err))
		} else {
			ts.current = tok.RefreshToken
			ts.metrics.RecordTokenRotation(ts.ctx, instrumentation.ResultSuccess)
			ts.logger.Info("rotated refresh token persisted", logging.UserHash(ts.phone))
		}
	}

	return tok, nil
}
