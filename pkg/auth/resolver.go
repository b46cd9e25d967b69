package auth

import (
	"context"
	"errors"
	"strings"

	"torrent-catalog/pkg/jwt"
	"torrent-catalog/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const bearerPrefix = "Bearer "

var ErrPrincipalNotFound = errors.New("principal not found")

// CredentialStore is the account contract the resolver and the ban flow
// consume. FindByID and FindByUsername return ErrPrincipalNotFound for
// unknown accounts.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	UpdateBanState(ctx context.Context, id string, banned bool, reason string) error
}

type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Resolver struct {
	tokens TokenVerifier
	store  CredentialStore
	logger *logger.Logger
	tracer trace.Tracer
}

func NewResolver(tokens TokenVerifier, store CredentialStore, logger *logger.Logger) *Resolver {
	return &Resolver{
		tokens: tokens,
		store:  store,
		logger: logger,
		tracer: otel.Tracer("torrent-catalog/pkg/auth"),
	}
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Resolve returns the principal behind header, or nil for anonymous callers.
// Missing, malformed, expired and forged tokens all come back as nil, as do
// tokens for accounts that no longer exist or are banned. The returned role
// is the one currently stored for the account, not the one in the token.
func (r *Resolver) Resolve(ctx context.Context, header string) *Principal {
	token, ok := BearerToken(header)
	if !ok {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "auth.Resolve")
	defer span.End()

	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		span.SetAttributes(attribute.String("auth.outcome", "invalid_token"))
		r.logger.Info("Rejected bearer token: %v", err)
		return nil
	}

	principal, err := r.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			span.SetAttributes(attribute.String("auth.outcome", "unknown_account"))
			r.logger.Info("Token for unknown account %s", claims.UserID)
		} else {
			span.SetAttributes(attribute.String("auth.outcome", "store_error"))
			r.logger.Error("Failed to load account %s: %v", claims.UserID, err)
		}
		return nil
	}
	if principal.Banned {
		span.SetAttributes(attribute.String("auth.outcome", "banned"))
		r.logger.Info("Token for banned account %s", principal.ID)
		return nil
	}

	span.SetAttributes(
		attribute.String("auth.outcome", "ok"),
		attribute.String("auth.role", string(principal.Role)),
	)
	return principal
}
