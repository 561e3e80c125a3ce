package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/repforge/internal/models"
)

// GetOrCreateUser finds or creates a user by login name and returns the
// caller's Principal. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (models.Principal, error) {
	var p models.Principal
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id, login, display_name, is_admin
	`, login, displayName).Scan(&p.UserID, &p.Login, &p.DisplayName, &p.Admin)
	if err != nil {
		return models.Principal{}, fmt.Errorf("upserting user: %w", err)
	}
	return p, nil
}
