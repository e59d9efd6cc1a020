package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpSecretSize = 20
	totpPeriod     = 30
	totpSkew       = 1
	qrCodeSize     = 256
)

// TOTPProviderImpl implements domain.TOTPProvider on RFC 6238 with SHA1,
// 6 digits and a 30 second step. Codes one step either side of the current
// one are accepted.
type TOTPProviderImpl struct {
	issuer string
	now    func() time.Time
}

// NewTOTPProvider creates a provider labelling keys with issuer
func NewTOTPProvider(issuer string) *TOTPProviderImpl {
	return &TOTPProviderImpl{issuer: issuer, now: time.Now}
}

// WithTOTPClock replaces the time source
func (p *TOTPProviderImpl) WithTOTPClock(now func() time.Time) *TOTPProviderImpl {
	p.now = now
	return p
}

// Generate implements domain.TOTPProvider
func (p *TOTPProviderImpl) Generate(account string) (*domain.TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return nil, err
	}

	return &domain.TOTPKey{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCodeURL:  qr,
	}, nil
}

// Validate implements domain.TOTPProvider. Codes of the wrong length are a
// mismatch, not an error.
func (p *TOTPProviderImpl) Validate(code, secret string) (bool, error) {
	ok, err := totp.ValidateCustom(code, secret, p.now().UTC(), p.validateOpts())
	if err != nil {
		if errors.Is(err, otp.ErrValidateInputInvalidLength) {
			return false, nil
		}
		return false, fmt.Errorf("validate totp code: %w", err)
	}
	return ok, nil
}

// CodeAt returns the code for secret at t
func (p *TOTPProviderImpl) CodeAt(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t.UTC(), p.validateOpts())
}

func (p *TOTPProviderImpl) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("render totp qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode totp qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

var _ domain.TOTPProvider = (*TOTPProviderImpl)(nil)
