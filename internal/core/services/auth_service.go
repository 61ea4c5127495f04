package services

import (
	"context"
	"errors"
	"log"
	"time"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/config"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/pkg/jwt"
	"health-service-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const verificationTokenTTL = 24 * time.Hour

// AuthService composes the credential hasher, field-independent token
// issuer, MFA engine and handshake store into the registration and login
// flows
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	sessions         SessionStore
	mfa              *MFAService
	notify           *NotificationService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	sessions SessionStore,
	mfa *MFAService,
	notify *NotificationService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		sessions:         sessions,
		mfa:              mfa,
		notify:           notify,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	LicenseNumber string `json:"license_number" validate:"required,len=6,numeric"`
	Role          string `json:"role" validate:"required,oneof=doctor pharmacist"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResult carries the MFA provisioning payload back to the registrant
type RegisterResult struct {
	User       *models.UserResponse
	OTPAuthURL string
	QRCodePNG  []byte
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents a completed authentication
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register registers a new user in the pending-admin-verification state and
// returns the MFA provisioning payload
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*RegisterResult, error) {
	// 1. Validate input format
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidInput
	}
	if !isLicenseNumber(input.LicenseNumber) {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	// 3. Check for duplicate license number. Stored hashes are salted, so
	// the candidate has to be compared against every one of them.
	hashes, err := s.userRepo.ListLicenseHashes(ctx)
	if err != nil {
		return nil, err
	}
	for _, hash := range hashes {
		if password.Verify(input.LicenseNumber, hash) {
			return nil, domain.ErrDuplicateLicense
		}
	}

	// 4. Hash password & license number
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	hashedLicense, err := password.Hash(input.LicenseNumber)
	if err != nil {
		return nil, err
	}

	// 5. Generate MFA secret and provisioning material
	secret, otpURL, err := s.mfa.GenerateSecret(input.Email)
	if err != nil {
		return nil, err
	}

	// 6. Create user pending admin verification
	verificationToken := uuid.New().String()
	expires := time.Now().Add(verificationTokenTTL)

	user := &models.User{
		Email:                    input.Email,
		Password:                 hashedPassword,
		LicenseNumber:            hashedLicense,
		Role:                     input.Role,
		IsVerified:               false,
		VerificationToken:        &verificationToken,
		VerificationTokenExpires: &expires,
		MFASecret:                secret,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// loser of a concurrent same-email registration race: the unique
		// constraint is the race-breaker
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	// 7. Notify the admin out-of-band (best-effort)
	s.notify.NotifyRegistration(user.ID, user.Email, user.Role, verificationToken)

	// 8. Render the QR payload for the authenticator app
	qr, err := s.mfa.QRCode(otpURL)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User registered, awaiting admin verification: %s (%s)", user.Email, user.Role)

	return &RegisterResult{
		User:       user.ToResponse(),
		OTPAuthURL: otpURL,
		QRCodePNG:  qr,
	}, nil
}

// AdminVerify consumes a one-time verification token, moving the user from
// pending-admin-verification to verified. The second call with the same
// (now cleared) token fails, it never silently re-verifies.
func (s *AuthService) AdminVerify(ctx context.Context, userID uint, token string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidOrExpiredToken
		}
		return err
	}

	if user.IsVerified || user.VerificationToken == nil || *user.VerificationToken != token {
		return domain.ErrInvalidOrExpiredToken
	}
	if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
		return domain.ErrInvalidOrExpiredToken
	}

	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpires = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ User verified by admin: %s", user.Email)
	return nil
}

// Login checks credentials and opens an MFA handshake. Unknown email and
// wrong password are indistinguishable to the caller, in outcome and in
// timing.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password.DummyVerify(input.Password)
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !password.Verify(input.Password, user.Password) {
		return "", domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return "", domain.ErrNotVerified
	}

	if user.MFASecret == "" {
		return "", domain.ErrMfaSetupIncomplete
	}

	// Open the handshake bridging password check to TOTP check. No
	// long-lived credential is minted yet.
	handshake := uuid.New().String()
	ttl := time.Duration(s.cfg.Session.TTLSeconds) * time.Second
	if err := s.sessions.Put(ctx, handshake, user.ID, ttl); err != nil {
		return "", err
	}

	log.Printf("✅ Password verified, MFA challenge issued: %s", user.Email)
	return handshake, nil
}

// VerifyMFA resolves a handshake token, checks the TOTP code and on success
// consumes the handshake and issues the token pair. The handshake survives
// a wrong code (retry within its TTL), but is redeemable exactly once.
func (s *AuthService) VerifyMFA(ctx context.Context, handshakeToken, code string) (*AuthResponse, error) {
	userID, ok, err := s.sessions.Get(ctx, handshakeToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidOrExpiredSession
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredSession
		}
		return nil, err
	}

	if !s.mfa.Verify(code, user.MFASecret) {
		return nil, domain.ErrInvalidTOTP
	}

	// Consume the handshake; a concurrent redemption race has one winner
	if _, ok, err = s.sessions.Consume(ctx, handshakeToken); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrInvalidOrExpiredSession
	}

	if !user.MFAEnabled {
		user.MFAEnabled = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken exchanges a valid, unrevoked refresh token for a new token
// pair, rotating the refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token signature and expiry
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	// 2. Revocation check against the persisted store
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	// 3. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	// 4. Rotate: revoke the old token, issue and persist a new pair
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token. A missing or already revoked token is
// a no-op success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// MFAProvisioning rebuilds the QR payload for an authenticated user
// (device change)
func (s *AuthService) MFAProvisioning(ctx context.Context, userID uint) ([]byte, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFASecret == "" {
		return nil, domain.ErrMfaSetupIncomplete
	}
	return s.mfa.QRCode(s.mfa.ProvisioningURI(user.Email, user.MFASecret))
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// isLicenseNumber reports whether s is exactly six ASCII digits
func isLicenseNumber(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
