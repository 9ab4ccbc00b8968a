package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"

	"github.com/rs/zerolog"
)

// ExpiryBuffer is how long before the real expiry a token is renewed.
const ExpiryBuffer = time.Minute

// TokenProviderConfig holds the OAuth client settings.
type TokenProviderConfig struct {
	SellerID     int64
	ClientID     string
	ClientSecret string
	AuthURL      string
}

// TokenProvider hands out a valid access token for the seller account. It
// keeps the current credentials in memory and shares them, encrypted, through
// an optional CredentialCache backed by the repository rows.
type TokenProvider struct {
	cfg    TokenProviderConfig
	repo   ports.CredentialRepository
	cache  ports.CredentialCache
	enc    ports.EncryptionService
	client HTTPClient
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *domain.Credentials
}

// NewTokenProvider creates a token provider. cache may be nil.
func NewTokenProvider(
	cfg TokenProviderConfig,
	repo ports.CredentialRepository,
	cache ports.CredentialCache,
	enc ports.EncryptionService,
	client HTTPClient,
	log zerolog.Logger,
) *TokenProvider {
	return &TokenProvider{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		enc:    enc,
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// Token returns an access token that is valid for at least ExpiryBuffer.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && !p.current.Expired(p.now(), ExpiryBuffer) {
		return p.current.AccessToken, nil
	}

	creds, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	if creds.Expired(p.now(), ExpiryBuffer) {
		if creds, err = p.refreshLocked(ctx, creds); err != nil {
			return "", err
		}
	}
	p.current = creds
	return creds.AccessToken, nil
}

// Refresh renews the token after the API rejected it. When another caller
// already replaced the rejected token, the current one is returned as is.
func (p *TokenProvider) Refresh(ctx context.Context, rejected string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.AccessToken != rejected && !p.current.Expired(p.now(), ExpiryBuffer) {
		return p.current.AccessToken, nil
	}

	creds := p.current
	if creds == nil {
		var err error
		if creds, err = p.load(ctx); err != nil {
			return "", err
		}
	}
	if p.cache != nil {
		if err := p.cache.Delete(ctx, p.cfg.SellerID); err != nil {
			p.log.Warn().Err(err).Msg("marketplace: drop cached credentials failed")
		}
	}

	fresh, err := p.refreshLocked(ctx, creds)
	if err != nil {
		return "", err
	}
	p.current = fresh
	return fresh.AccessToken, nil
}

// load reads credentials from the shared cache, then the repository. Both
// hold the tokens encrypted.
func (p *TokenProvider) load(ctx context.Context) (*domain.Credentials, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, p.cfg.SellerID)
		switch {
		case err != nil:
			p.log.Warn().Err(err).Msg("marketplace: credential cache read failed")
		case cached != nil && !cached.Expired(p.now(), ExpiryBuffer):
			creds, err := p.open(cached)
			if err == nil {
				return creds, nil
			}
			p.log.Warn().Err(err).Msg("marketplace: cached credentials unreadable")
		}
	}

	stored, err := p.repo.Get(ctx, p.cfg.SellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrCredentialsUnavailable, err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: no credentials for seller %d", ports.ErrCredentialsUnavailable, p.cfg.SellerID)
	}

	creds, err := p.open(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrCredentialsUnavailable, err)
	}
	return creds, nil
}

// open returns a copy of sealed with both tokens decrypted.
func (p *TokenProvider) open(sealed *domain.Credentials) (*domain.Credentials, error) {
	creds := *sealed
	var err error
	if creds.AccessToken, err = p.enc.Decrypt(sealed.AccessToken); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if creds.RefreshToken, err = p.enc.Decrypt(sealed.RefreshToken); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}
	return &creds, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	UserID       int64  `json:"user_id"`
}

func (p *TokenProvider) refreshLocked(ctx context.Context, creds *domain.Credentials) (*domain.Credentials, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"refresh_token": {creds.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		p.log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("marketplace: token refresh rejected")
		return nil, fmt.Errorf("token refresh: status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token refresh: empty access token")
	}

	fresh := &domain.Credentials{
		UserID:       creds.UserID,
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
		LastUpdate:   p.now(),
	}
	if fresh.UserID == 0 {
		fresh.UserID = p.cfg.SellerID
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = creds.RefreshToken
	}

	p.persist(ctx, fresh)
	p.log.Info().Int64("user_id", fresh.UserID).Msg("marketplace: access token refreshed")
	return fresh, nil
}

// persist stores the new tokens, encrypted, in the repository and the shared
// cache. Failures are logged: the fresh token is still usable for this
// process.
func (p *TokenProvider) persist(ctx context.Context, creds *domain.Credentials) {
	sealed := *creds
	var err error
	if sealed.AccessToken, err = p.enc.Encrypt(creds.AccessToken); err == nil {
		sealed.RefreshToken, err = p.enc.Encrypt(creds.RefreshToken)
	}
	if err != nil {
		p.log.Error().Err(err).Msg("marketplace: encrypt refreshed tokens failed")
		return
	}
	if err := p.repo.Save(ctx, &sealed); err != nil {
		p.log.Error().Err(err).Msg("marketplace: persist refreshed tokens failed")
	}

	if p.cache != nil {
		ttl := creds.ExpiresAt().Sub(p.now()) - ExpiryBuffer
		if err := p.cache.Set(ctx, &sealed, ttl); err != nil {
			p.log.Warn().Err(err).Msg("marketplace: credential cache write failed")
		}
	}
}
