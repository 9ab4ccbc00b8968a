package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	redisStorage "meli-reconciler/internal/adapter/storage/redis"
	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/core/ports/mocks"
	"meli-reconciler/internal/service"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type tokenFixture struct {
	provider *TokenProvider
	repo     *mocks.MockCredentialRepository
	cache    *mocks.MockCredentialCache
	enc      *mocks.MockEncryptionService
	form     chan map[string]string
}

func newTokenFixture(t *testing.T, withCache bool, status int, body string) *tokenFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &tokenFixture{
		repo: mocks.NewMockCredentialRepository(ctrl),
		enc:  mocks.NewMockEncryptionService(ctrl),
		form: make(chan map[string]string, 4),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.form <- map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
			"refresh_token": r.PostForm.Get("refresh_token"),
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	var cache ports.CredentialCache
	if withCache {
		f.cache = mocks.NewMockCredentialCache(ctrl)
		cache = f.cache
	}

	f.provider = NewTokenProvider(TokenProviderConfig{
		SellerID:     555,
		ClientID:     "app-1",
		ClientSecret: "secret-1",
		AuthURL:      srv.URL + "/oauth/token",
	}, f.repo, cache, f.enc, srv.Client(), zerolog.Nop())
	f.provider.now = func() time.Time { return fixedNow }
	return f
}

func storedCreds(lastUpdate time.Time) *domain.Credentials {
	return &domain.Credentials{
		UserID:       555,
		AccessToken:  "enc(access)",
		RefreshToken: "enc(refresh)",
		TokenType:    "bearer",
		ExpiresIn:    21600,
		LastUpdate:   lastUpdate,
	}
}

func TestTokenProvider_Token_UsesValidStoredToken(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK, `{}`)

	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow.Add(-time.Hour)), nil).Times(1)
	f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil)
	f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil)

	tok, err := f.provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", tok)

	// Served from memory the second time.
	tok, err = f.provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", tok)
	assert.Empty(t, f.form)
}

func TestTokenProvider_Token_RefreshesExpiredToken(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK,
		`{"access_token":"new-access","token_type":"bearer","expires_in":21600,"refresh_token":"new-refresh","user_id":555}`)

	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow.Add(-7*time.Hour)), nil)
	f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil)
	f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil)
	f.enc.EXPECT().Encrypt("new-access").Return("enc(new-access)", nil)
	f.enc.EXPECT().Encrypt("new-refresh").Return("enc(new-refresh)", nil)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *domain.Credentials) error {
		assert.Equal(t, "enc(new-access)", c.AccessToken)
		assert.Equal(t, "enc(new-refresh)", c.RefreshToken)
		assert.Equal(t, fixedNow, c.LastUpdate)
		assert.Equal(t, int64(555), c.UserID)
		return nil
	})

	tok, err := f.provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok)

	form := <-f.form
	assert.Equal(t, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     "app-1",
		"client_secret": "secret-1",
		"refresh_token": "refresh",
	}, form)
}

func TestTokenProvider_Token_PrefersSharedCache(t *testing.T) {
	f := newTokenFixture(t, true, http.StatusOK, `{}`)

	cached := &domain.Credentials{UserID: 555, AccessToken: "enc(cached)", RefreshToken: "enc(r)", ExpiresIn: 21600, LastUpdate: fixedNow}
	f.cache.EXPECT().Get(gomock.Any(), int64(555)).Return(cached, nil)
	f.enc.EXPECT().Decrypt("enc(cached)").Return("cached", nil)
	f.enc.EXPECT().Decrypt("enc(r)").Return("r", nil)

	tok, err := f.provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
	assert.Equal(t, "enc(cached)", cached.AccessToken)
}

func TestTokenProvider_Token_UnreadableCacheFallsBackToRepo(t *testing.T) {
	f := newTokenFixture(t, true, http.StatusOK, `{}`)

	cached := &domain.Credentials{UserID: 555, AccessToken: "garbage", RefreshToken: "enc(r)", ExpiresIn: 21600, LastUpdate: fixedNow}
	gomock.InOrder(
		f.cache.EXPECT().Get(gomock.Any(), int64(555)).Return(cached, nil),
		f.enc.EXPECT().Decrypt("garbage").Return("", errors.New("cipher: message authentication failed")),
		f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil),
		f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil),
		f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil),
	)

	tok, err := f.provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", tok)
}

func TestTokenProvider_Token_MissingCredentials(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK, `{}`)
	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(nil, nil)

	_, err := f.provider.Token(context.Background())
	assert.True(t, errors.Is(err, ports.ErrCredentialsUnavailable))
}

func TestTokenProvider_Token_UndecryptableCredentials(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK, `{}`)
	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil)
	f.enc.EXPECT().Decrypt("enc(access)").Return("", errors.New("cipher: message authentication failed"))

	_, err := f.provider.Token(context.Background())
	assert.True(t, errors.Is(err, ports.ErrCredentialsUnavailable))
}

func TestTokenProvider_Refresh_KeepsRefreshTokenWhenOmitted(t *testing.T) {
	f := newTokenFixture(t, true, http.StatusOK, `{"access_token":"new-access","expires_in":3600}`)

	f.cache.EXPECT().Get(gomock.Any(), int64(555)).Return(nil, nil)
	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil)
	f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil)
	f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil)
	f.cache.EXPECT().Delete(gomock.Any(), int64(555)).Return(nil)
	f.enc.EXPECT().Encrypt("new-access").Return("enc(new-access)", nil)
	f.enc.EXPECT().Encrypt("refresh").Return("enc(refresh)", nil)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	f.cache.EXPECT().Set(gomock.Any(), gomock.Any(), 59*time.Minute).DoAndReturn(
		func(_ context.Context, c *domain.Credentials, _ time.Duration) error {
			assert.Equal(t, "enc(new-access)", c.AccessToken)
			assert.Equal(t, "enc(refresh)", c.RefreshToken)
			return nil
		})

	tok, err := f.provider.Refresh(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok)
}

func TestTokenProvider_Refresh_Rejected(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil)
	f.enc.EXPECT().Decrypt(gomock.Any()).Return("plain", nil).Times(2)

	_, err := f.provider.Refresh(context.Background(), "plain")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrCredentialsUnavailable))
}

func TestTokenProvider_Refresh_SkipsWhenAlreadyReplaced(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK,
		`{"access_token":"new-access","token_type":"bearer","expires_in":21600,"refresh_token":"new-refresh","user_id":555}`)

	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil).Times(1)
	f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil)
	f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil)
	f.enc.EXPECT().Encrypt(gomock.Any()).Return("sealed", nil).Times(2)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	tok, err := f.provider.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access", tok)

	// Several callers saw "access" rejected; only the first one refreshes.
	for range 3 {
		tok, err = f.provider.Refresh(context.Background(), "access")
		require.NoError(t, err)
		assert.Equal(t, "new-access", tok)
	}
	assert.Len(t, f.form, 1)
}

func TestTokenProvider_Refresh_ConcurrentCallersShareOneRefresh(t *testing.T) {
	f := newTokenFixture(t, false, http.StatusOK,
		`{"access_token":"new-access","token_type":"bearer","expires_in":21600,"refresh_token":"new-refresh","user_id":555}`)

	f.repo.EXPECT().Get(gomock.Any(), int64(555)).Return(storedCreds(fixedNow), nil).Times(1)
	f.enc.EXPECT().Decrypt("enc(access)").Return("access", nil)
	f.enc.EXPECT().Decrypt("enc(refresh)").Return("refresh", nil)
	f.enc.EXPECT().Encrypt(gomock.Any()).Return("sealed", nil).Times(2)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := f.provider.Token(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	tokens := make([]string, 4)
	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], _ = f.provider.Refresh(context.Background(), "access")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"new-access", "new-access", "new-access", "new-access"}, tokens)
	assert.Len(t, f.form, 1)
}

func TestTokenProvider_SharedCacheHoldsCiphertext(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := redisStorage.NewCredentialCache(rdb)

	enc, err := service.NewAESEncryptionService(strings.Repeat("ab", 32))
	require.NoError(t, err)
	oldAccess, err := enc.Encrypt("APP_USR-old")
	require.NoError(t, err)
	oldRefresh, err := enc.Encrypt("TG-old")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"access_token":"APP_USR-secret","token_type":"bearer","expires_in":21600,"refresh_token":"TG-refresh-secret","user_id":555}`)
	}))
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCredentialRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), int64(555)).Return(&domain.Credentials{
		UserID:       555,
		AccessToken:  oldAccess,
		RefreshToken: oldRefresh,
		ExpiresIn:    21600,
		LastUpdate:   fixedNow.Add(-7 * time.Hour),
	}, nil).Times(1)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	cfg := TokenProviderConfig{SellerID: 555, ClientID: "app-1", ClientSecret: "secret-1", AuthURL: srv.URL + "/oauth/token"}
	newProvider := func() *TokenProvider {
		p := NewTokenProvider(cfg, repo, cache, enc, srv.Client(), zerolog.Nop())
		p.now = func() time.Time { return fixedNow }
		return p
	}

	tok, err := newProvider().Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-secret", tok)

	raw, err := mr.Get("credentials:555")
	require.NoError(t, err)
	assert.NotContains(t, raw, "APP_USR-secret")
	assert.NotContains(t, raw, "TG-refresh-secret")

	// A second process reads the refreshed token from the cache.
	tok, err = newProvider().Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-secret", tok)
}
