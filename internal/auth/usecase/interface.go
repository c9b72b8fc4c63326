package usecase

import (
	"context"

	authdomain "timesync-backend/internal/auth/domain"
	authdto "timesync-backend/internal/auth/dto"
	"timesync-backend/pkg/identity"
)

// AuthUsecase defines the authentication flows
type AuthUsecase interface {
	Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.TokenResponse, error)
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	FirebaseSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error)
	Me(ctx context.Context, userID string) (*authdomain.User, error)
	RegisterFCMToken(ctx context.Context, userID, token, deviceInfo string) error
	UnregisterFCMToken(ctx context.Context, userID, token string) error
}

// IdentityProvider is the subset of the identity platform the flows use
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Account, error)
	CreateUser(ctx context.Context, email, password string) (*identity.Account, error)
	SendPasswordReset(ctx context.Context, email string) error
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Account, error)
}

// InboxTransfer moves a placeholder's pending shares into a new account
type InboxTransfer interface {
	TransferInbox(ctx context.Context, fromUserID, toUserID string) (int, error)
}
