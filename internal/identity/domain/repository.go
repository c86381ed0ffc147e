package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	// UserBySessionToken resolves a raw bearer token to its user. Expired or
	// unknown tokens return ErrInvalidSession / ErrSessionExpired.
	UserBySessionToken(ctx context.Context, token string) (*User, error)
}
