package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/login360/login360/pkg/utils"
)

const (
	DefaultMinLength     = 5
	DefaultVerifyTimeout = 3600 // seconds
	DefaultOTPTimeout    = 60   // seconds
	DefaultPort          = 9999
)

// Config holds the process-wide settings, loaded once at startup and
// immutable afterwards.
type Config struct {
	Salt string // key for the digest primitive

	TargetURL    string // callback URL prefix the signup secret is appended to
	MailFrom     string
	ResendAPIKey string

	// Two-factor settings. An empty OTPSeed disables the whole subsystem.
	OTPSeed     string
	OTPTimeout  int // one-time-code window, seconds
	TwilioSID   string
	TwilioToken string
	TwilioPhone string

	MinLength     int // minimum length of usernames and passwords
	VerifyTimeout int // pending-signup expiry, seconds; 0 disables
	Port          int
}

// TwoFactorEnabled reports whether the SMS second factor is configured.
func (c Config) TwoFactorEnabled() bool {
	return c.OTPSeed != ""
}

// Load builds and validates the configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Salt:          os.Getenv("SALT"),
		TargetURL:     os.Getenv("TARGET_URL"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		OTPSeed:       os.Getenv("OTP_SEED"),
		OTPTimeout:    envInt("OTP_TIMEOUT", DefaultOTPTimeout),
		TwilioSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhone:   os.Getenv("TWILIO_PHONE"),
		MinLength:     envInt("MIN_LENGTH", DefaultMinLength),
		VerifyTimeout: envInt("VERIFY_TIMEOUT", DefaultVerifyTimeout),
		Port:          envInt("PORT", DefaultPort),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Salt == "":
		return fmt.Errorf("SALT is required")
	case c.TargetURL == "":
		return fmt.Errorf("TARGET_URL is required")
	case c.MailFrom == "":
		return fmt.Errorf("MAIL_FROM is required")
	case c.ResendAPIKey == "":
		return fmt.Errorf("RESEND_API_KEY is required")
	}
	if !utils.IsBase32Seed(c.OTPSeed) {
		return fmt.Errorf("OTP_SEED must stick to the base32 alphabet [2-7A-Z=]")
	}
	if c.TwoFactorEnabled() {
		if c.TwilioSID == "" || c.TwilioToken == "" || c.TwilioPhone == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE are required when OTP_SEED is set")
		}
		if c.OTPTimeout <= 0 {
			return fmt.Errorf("OTP_TIMEOUT must be positive")
		}
	}
	if c.MinLength < 1 {
		return fmt.Errorf("MIN_LENGTH must be positive")
	}
	if c.VerifyTimeout < 0 {
		return fmt.Errorf("VERIFY_TIMEOUT must not be negative (0 disables expiry)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	return nil
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
