package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	authdto "timesync-backend/internal/auth/dto"
	"timesync-backend/internal/auth/repository"
	"timesync-backend/internal/session"
	"timesync-backend/pkg/config"
	"timesync-backend/pkg/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	identity  IdentityProvider
	profiles  repository.ProfileRepository
	tokens    repository.RefreshTokenRepository
	fcmTokens repository.FCMTokenRepository
	inbox     InboxTransfer
	sessions  *session.Provider
	config    *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(
	identity IdentityProvider,
	profiles repository.ProfileRepository,
	tokens repository.RefreshTokenRepository,
	fcmTokens repository.FCMTokenRepository,
	inbox InboxTransfer,
	sessions *session.Provider,
	cfg *config.Config,
) AuthUsecase {
	return &authUsecase{
		identity:  identity,
		profiles:  profiles,
		tokens:    tokens,
		fcmTokens: fcmTokens,
		inbox:     inbox,
		sessions:  sessions,
		config:    cfg,
	}
}

func (u *authUsecase) Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.TokenResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, authdomain.ErrPasswordMismatch
	}

	account, err := u.identity.CreateUser(ctx, authdomain.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	u.claimPlaceholder(ctx, account)

	user := &authdomain.User{ID: account.UID, Email: account.Email}
	if user.Email == "" {
		user.Email = req.Email
	}
	if err := u.profiles.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.signIn(ctx, user)
}

// claimPlaceholder moves shares sent to the email before the account
// existed. Failures are logged; the signup itself still succeeds.
func (u *authUsecase) claimPlaceholder(ctx context.Context, account *identity.Account) {
	placeholder, err := u.profiles.FindByID(ctx, authdomain.PlaceholderID(account.Email))
	if err != nil {
		log.Printf("[Auth] placeholder lookup for %s failed: %v", account.Email, err)
		return
	}
	if placeholder == nil || !placeholder.IsTempAccount || placeholder.ID == account.UID {
		return
	}

	moved, err := u.inbox.TransferInbox(ctx, placeholder.ID, account.UID)
	if err != nil {
		log.Printf("[Auth] moving shares from placeholder %s failed: %v", placeholder.ID, err)
		return
	}
	if err := u.profiles.Delete(ctx, placeholder.ID); err != nil {
		log.Printf("[Auth] deleting placeholder %s failed: %v", placeholder.ID, err)
	}
	log.Printf("[Auth] claimed placeholder %s for %s (%d shared tasks)", placeholder.ID, account.UID, moved)
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	account, err := u.identity.SignInWithPassword(ctx, authdomain.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return u.signIn(ctx, user)
}

func (u *authUsecase) FirebaseSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error) {
	account, err := u.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := u.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	return u.signIn(ctx, user)
}

// ensureProfile loads the profile of an existing account, creating it for
// accounts made outside this service.
func (u *authUsecase) ensureProfile(ctx context.Context, account *identity.Account) (*authdomain.User, error) {
	user, err := u.profiles.FindByID(ctx, account.UID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &authdomain.User{ID: account.UID, Email: account.Email}
	if err := u.profiles.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) signIn(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	resp, err := u.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	u.sessions.SignIn(session.Identity{UserID: user.ID, Email: user.Email})
	return resp, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// Check if token exists in repository
	storedToken, err := u.tokens.Find(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if storedToken == nil || storedToken.Expired(time.Now()) {
		return nil, authdomain.ErrRefreshExpired
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}

	// Rotate: the presented token is single use.
	if err := u.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return u.generateTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if err := u.tokens.Delete(ctx, refreshToken); err != nil {
		return err
	}
	u.sessions.SignOut()
	return nil
}

func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	return u.identity.SendPasswordReset(ctx, authdomain.NormalizeEmail(email))
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*authdomain.User, error) {
	user, err := u.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) RegisterFCMToken(ctx context.Context, userID, token, deviceInfo string) error {
	return u.fcmTokens.SaveToken(ctx, userID, token, deviceInfo)
}

func (u *authUsecase) UnregisterFCMToken(ctx context.Context, userID, token string) error {
	return u.fcmTokens.DeleteUserToken(ctx, userID, token)
}

func (u *authUsecase) generateTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.tokens.Save(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) generateRefreshToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, authdomain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}
	return claims, nil
}

func (u *authUsecase) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	claims, err := u.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	// Refresh tokens carry token_id; only access tokens authenticate requests.
	if _, isRefresh := claims["token_id"]; isRefresh {
		return nil, authdomain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Join(authdomain.ErrInvalidToken, authdomain.ErrUserNotFound)
	}
	return user, nil
}
