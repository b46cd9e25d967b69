package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"torrent-catalog/pkg/auth"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/queue"
	"torrent-catalog/services/auth/internal/entity"
	"torrent-catalog/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens. *jwt.Service satisfies it.
type TokenIssuer interface {
	GenerateToken(userID, role string) (string, error)
}

// Notifier publishes account events. *queue.Client satisfies it.
type Notifier interface {
	Publish(ctx context.Context, event queue.Event) error
}

type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	BanUser(ctx context.Context, actor *auth.Principal, userID, reason string) error
	UnbanUser(ctx context.Context, actor *auth.Principal, userID string) error
	SetRole(ctx context.Context, actor *auth.Principal, userID string, role auth.Role) (*entity.User, error)
}

type authUseCase struct {
	userRepo    persistent.UserRepository
	credentials auth.CredentialStore
	tokens      TokenIssuer
	notifier    Notifier
	logger      *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	credentials auth.CredentialStore,
	tokens TokenIssuer,
	notifier Notifier,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:    userRepo,
		credentials: credentials,
		tokens:      tokens,
		notifier:    notifier,
		logger:      logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, email, username, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, persistent.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := uc.credentials.FindByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, auth.ErrPrincipalNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	user := &entity.User{
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
		Role:     auth.RoleUser,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		uc.logger.Error("Failed to create user: %v", err)
		return nil, "", fmt.Errorf("failed to create user")
	}

	token, err := uc.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if user.Banned {
		return nil, "", ErrAccountBanned
	}

	token, err := uc.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// BanUser blocks an account. Its existing tokens stop resolving on the next
// request because the resolver reads the ban flag live.
func (uc *authUseCase) BanUser(ctx context.Context, actor *auth.Principal, userID, reason string) error {
	if err := uc.checkOutranks(ctx, actor, userID); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if err := uc.credentials.UpdateBanState(ctx, userID, true, reason); err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			return persistent.ErrUserNotFound
		}
		return fmt.Errorf("failed to ban user: %w", err)
	}

	uc.logger.Info("User %s banned by %s: %s", userID, actor.ID, reason)

	if uc.notifier != nil {
		go uc.publishBan(userID, actor.ID, reason)
	}
	return nil
}

func (uc *authUseCase) UnbanUser(ctx context.Context, actor *auth.Principal, userID string) error {
	if err := uc.checkOutranks(ctx, actor, userID); err != nil {
		return err
	}

	if err := uc.credentials.UpdateBanState(ctx, userID, false, ""); err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			return persistent.ErrUserNotFound
		}
		return fmt.Errorf("failed to unban user: %w", err)
	}

	uc.logger.Info("User %s unbanned by %s", userID, actor.ID)
	return nil
}

// SetRole changes another account's role. Admins cannot change their own
// role, so the last admin cannot lock everyone out.
func (uc *authUseCase) SetRole(ctx context.Context, actor *auth.Principal, userID string, role auth.Role) (*entity.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if !auth.Authorize(actor, auth.RoleAdmin).Allowed || actor.ID == userID {
		return nil, ErrForbidden
	}

	if err := uc.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	uc.logger.Info("User %s role set to %s by %s", userID, role, actor.ID)
	return uc.GetUser(ctx, userID)
}

// checkOutranks lets actor moderate target only when actor is a moderator
// ranking strictly above the target's current role.
func (uc *authUseCase) checkOutranks(ctx context.Context, actor *auth.Principal, targetID string) error {
	if !auth.Authorize(actor, auth.RoleModerator).Allowed {
		return ErrForbidden
	}

	target, err := uc.credentials.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			return persistent.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if actor.Role.Rank() <= target.Role.Rank() {
		return ErrForbidden
	}
	return nil
}

func (uc *authUseCase) publishBan(userID, moderatorID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := queue.Event{
		Type:   queue.EventAccountBanned,
		UserID: userID,
		Payload: map[string]interface{}{
			"moderator_id": moderatorID,
			"reason":       reason,
		},
		Priority: 8,
	}
	if err := uc.notifier.Publish(ctx, event); err != nil {
		uc.logger.Error("[NOTIFICATION QUEUE] Failed to publish ban of %s: %v", userID, err)
	}
}
