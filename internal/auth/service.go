package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/botworkspace/googlelink/internal/identity"
	"github.com/botworkspace/googlelink/internal/instrumentation"
	"github.com/botworkspace/googlelink/internal/logging"
	"github.com/botworkspace/googlelink/internal/store"
)

// Config holds the Google OAuth client credentials for the service.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Service implements the account linking lifecycle: building consent
// URLs, exchanging authorization codes, and reconstituting authorized
// clients from stored refresh tokens.
type Service struct {
	oauth     *oauth2.Config
	store     store.Store
	validator identity.Validator
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the service.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates the account linking service. st and v are required;
// metrics and logger default to no-op and slog.Default respectively.
func NewService(cfg Config, st store.Store, v identity.Validator, opts ...Option) *Service {
	s := &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
		store:     st,
		validator: v,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthURL validates identityToken, recovers the phone claim and returns
// the Google consent URL the user must visit. The URL requests offline
// access and forces the consent prompt; without prompt=consent Google
// suppresses refresh-token issuance for users who already granted
// consent once.
func (s *Service) AuthURL(ctx context.Context, sessionID, identityToken string) (string, error) {
	phone, err := s.validator.Validate(identityToken)
	if err != nil {
		s.metrics.RecordAuthURL(ctx, instrumentation.ResultFailure)
		return "", fmt.Errorf("%w: %s", ErrInvalidIdentity, err)
	}

	state, err := State{SID: sessionID, Phone: phone}.Encode()
	if err != nil {
		s.metrics.RecordAuthURL(ctx, instrumentation.ResultFailure)
		return "", err
	}

	url := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	s.metrics.RecordAuthURL(ctx, instrumentation.ResultSuccess)
	s.logger.Info("authorization URL issued", logging.UserHash(phone))
	return url, nil
}

// Exchange redeems the authorization code returned by Google, persists
// the refresh token for the phone embedded in encodedState, and returns
// the access token. The refresh token never leaves this method.
func (s *Service) Exchange(ctx context.Context, code, encodedState string) (string, error) {
	st, err := DecodeState(encodedState)
	if err != nil {
		s.metrics.RecordTokenExchange(ctx, instrumentation.ResultFailure)
		return "", err
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordTokenExchange(ctx, instrumentation.ResultFailure)
		return "", fmt.Errorf("%w: %s", ErrTokenExchange, err)
	}

	if err := s.SaveRefreshToken(ctx, st.Phone, tok.RefreshToken); err != nil {
		s.metrics.RecordTokenExchange(ctx, instrumentation.ResultFailure)
		return "", err
	}

	s.metrics.RecordTokenExchange(ctx, instrumentation.ResultSuccess)
	s.logger.Info("authorization code exchanged", logging.UserHash(st.Phone))
	return tok.AccessToken, nil
}

// SaveRefreshToken upserts the refresh token for phone: the record is
// created if the user has none, replaced otherwise.
func (s *Service) SaveRefreshToken(ctx context.Context, phone, refreshToken string) error {
	if err := s.store.UpsertRefreshToken(ctx, phone, refreshToken); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	s.logger.Debug("refresh token saved",
		logging.UserHash(phone),
		slog.String("token", logging.SanitizeToken(refreshToken)))
	return nil
}

// GetRefreshToken returns the stored refresh token for phone, or "" when
// none exists. Storage failures also degrade to "": an absent token and
// an unreadable one both mean the user has to re-authorize, and callers
// treat them uniformly.
func (s *Service) GetRefreshToken(ctx context.Context, phone string) string {
	u, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		s.logger.Error("refresh token lookup failed", logging.UserHash(phone), logging.Err(err))
		return ""
	}
	if u == nil {
		return ""
	}
	return u.RefreshToken
}

// Authorize returns an HTTP client authorized as the user identified by
// phone. The client refreshes its access token on demand from the stored
// refresh token; when Google rotates the refresh token during such a
// refresh, the rotated token is persisted before the token is handed to
// the transport. Each call builds an independent token source, so
// concurrent clients for different users never share credentials.
func (s *Service) Authorize(ctx context.Context, phone string) (*http.Client, error) {
	ts, err := s.TokenSource(ctx, phone)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// TokenSource is Authorize for callers that want tokens rather than an
// *http.Client (the Google API clients take an option.WithTokenSource).
func (s *Service) TokenSource(ctx context.Context, phone string) (oauth2.TokenSource, error) {
	refreshToken := s.GetRefreshToken(ctx, phone)
	if refreshToken == "" {
		s.metrics.RecordAuthorization(ctx, instrumentation.ResultFailure)
		return nil, ErrMissingAuthorization
	}

	base := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	s.metrics.RecordAuthorization(ctx, instrumentation.ResultSuccess)

	return &persistingTokenSource{
		ctx:     ctx,
		src:     base,
		store:   s.store,
		metrics: s.metrics,
		logger:  s.logger,
		phone:   phone,
		current: refreshToken,
	}, nil
}

// IsFirstInteraction reports whether phone has never talked to the bot
// before: true iff no user record exists. A record without a refresh
// token still counts as prior contact. Unlike GetRefreshToken, storage
// failures propagate, because this check routes users into the
// authentication branch of the caller's logic and masking a failure
// would silently misroute returning users.
func (s *Service) IsFirstInteraction(ctx context.Context, phone string) (bool, error) {
	if phone == "" {
		return false, ErrMissingIdentifier
	}

	u, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to check first interaction: %w", err)
	}
	return u == nil, nil
}
