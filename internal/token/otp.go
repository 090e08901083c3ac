package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// otpMin and otpMax bound the code to exactly six digits.
const (
	otpMin = 100000
	otpMax = 999999
)

// OTP is a freshly generated one-time login code with its expiry as epoch
// seconds. The code is delivered by email; the expiry is persisted with the
// credential record and checked in the lookup predicate.
type OTP struct {
	Code      int
	ExpiresAt int64
}

// String renders the code as the 6-digit string stored and compared by the
// credential store.
func (o OTP) String() string {
	return fmt.Sprintf("%06d", o.Code)
}

// GenerateOTP produces a 6-digit code in [100000, 999999] from the
// cryptographically secure random source. A general-purpose PRNG would make
// codes predictable, which defeats the whole login scheme.
func GenerateOTP(ttl time.Duration) (OTP, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return OTP{}, fmt.Errorf("reading random source: %w", err)
	}

	return OTP{
		Code:      otpMin + int(n.Int64()),
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}, nil
}
