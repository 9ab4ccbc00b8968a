package postgres

import (
	"context"
	"errors"
	"fmt"

	"meli-reconciler/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CredentialRepo implements ports.CredentialRepository. Token columns hold
// ciphertext; encryption happens before Save and after Get.
type CredentialRepo struct {
	pool Pool
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(pool Pool) *CredentialRepo {
	return &CredentialRepo{pool: pool}
}

// Get fetches the credentials of a seller. Returns (nil, nil) if none.
func (r *CredentialRepo) Get(ctx context.Context, userID int64) (*domain.Credentials, error) {
	query := `SELECT user_id, access_token_enc, refresh_token_enc, token_type, expires_in, last_update
		FROM marketplace_credentials WHERE user_id = $1`

	c := &domain.Credentials{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&c.UserID, &c.AccessToken, &c.RefreshToken, &c.TokenType, &c.ExpiresIn, &c.LastUpdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return c, nil
}

// Save upserts the credentials of a seller.
func (r *CredentialRepo) Save(ctx context.Context, c *domain.Credentials) error {
	query := `INSERT INTO marketplace_credentials (user_id, access_token_enc, refresh_token_enc, token_type, expires_in, last_update)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token_enc = EXCLUDED.access_token_enc,
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			token_type = EXCLUDED.token_type,
			expires_in = EXCLUDED.expires_in,
			last_update = EXCLUDED.last_update`

	_, err := r.pool.Exec(ctx, query,
		c.UserID, c.AccessToken, c.RefreshToken, c.TokenType, c.ExpiresIn, c.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}
