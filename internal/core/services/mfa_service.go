package services

import (
	"net/url"
	"time"

	"health-service-api/internal/config"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// MFAService generates per-user TOTP secrets, renders provisioning payloads
// and verifies one-time codes
type MFAService struct {
	issuer string
}

// NewMFAService creates a new MFA service
func NewMFAService(cfg *config.MFAConfig) *MFAService {
	return &MFAService{issuer: cfg.Issuer}
}

// GenerateSecret creates a fresh TOTP secret for an account and returns the
// base32 secret together with its otpauth provisioning URI
func (s *MFAService) GenerateSecret(accountEmail string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountEmail,
		Period:      30,
		SecretSize:  32,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ProvisioningURI rebuilds the otpauth URI for an existing base32 secret
// (re-provisioning after a device change)
func (s *MFAService) ProvisioningURI(accountEmail, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	v.Set("period", "30")
	v.Set("digits", "6")
	v.Set("algorithm", "SHA1")

	label := url.PathEscape(s.issuer + ":" + accountEmail)
	return "otpauth://totp/" + label + "?" + v.Encode()
}

// QRCode renders a provisioning URI as a PNG for authenticator apps
func (s *MFAService) QRCode(provisioningURI string) ([]byte, error) {
	return qrcode.Encode(provisioningURI, qrcode.Medium, 256)
}

// Verify checks a TOTP code against a secret, accepting the current and
// adjacent time steps to tolerate clock drift. Missing secrets and
// malformed codes resolve to false, never an error.
func (s *MFAService) Verify(code, secret string) bool {
	if secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}
