package utils

import (
	"regexp"
	"strings"
)

// IsValidEmail checks the local@domain shape: exactly one "@" and a domain
// of at least two dot-separated labels, all non-empty.
func IsValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	labels := strings.Split(parts[1], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

var hexRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// IsHexSecret checks the shape of a 256-bit hex secret or token.
func IsHexSecret(s string) bool {
	return hexRegex.MatchString(s)
}

var digitsRegex = regexp.MustCompile(`^[0-9]{6}$`)

// IsOneTimeCode checks that s is exactly six decimal digits.
func IsOneTimeCode(s string) bool {
	return digitsRegex.MatchString(s)
}

var phoneStrip = regexp.MustCompile(`[^0-9+]+`)

// SanitizePhone drops everything but digits and "+".
func SanitizePhone(s string) string {
	return phoneStrip.ReplaceAllString(s, "")
}

var base32Strip = regexp.MustCompile(`[^2-7A-Z]+`)

// NormalizeBase32 uppercases s and strips every character outside the
// base32 alphabet, making it appendable to a base32 TOTP seed.
func NormalizeBase32(s string) string {
	return base32Strip.ReplaceAllString(strings.ToUpper(s), "")
}

var base32SeedRegex = regexp.MustCompile(`^[2-7A-Z=]*$`)

// IsBase32Seed checks that a configured OTP seed sticks to the base32
// alphabet (padding allowed).
func IsBase32Seed(s string) bool {
	return base32SeedRegex.MatchString(s)
}
