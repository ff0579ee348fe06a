package config

import (
	"os"
	"strings"
	"time"
)

// Config aggregates process configuration. Partial configuration degrades
// gracefully: without a store the classifier runs allowlist-only, without
// messaging credentials invites are logged and dropped.
type Config struct {
	Addr      string
	Store     StoreConfig
	Postgres  PostgresConfig
	Backup    BackupConfig
	Messaging MessagingConfig
	Redis     RedisConfig
	Allowlist AllowlistConfig
}

// StoreConfig points at the remote record store's REST endpoint.
type StoreConfig struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
}

// Configured reports whether the remote store can be reached at all.
func (c StoreConfig) Configured() bool {
	return c.URL != "" && c.Key != ""
}

// PostgresConfig selects the direct-SQL store backend when set.
type PostgresConfig struct {
	DSN string
}

// BackupConfig controls the local append-only CSV safety net.
type BackupConfig struct {
	Path string
}

// MessagingConfig carries WhatsApp Cloud API credentials. VerifyToken is the
// shared secret echoed during the provider's webhook subscription handshake.
type MessagingConfig struct {
	Token         string
	PhoneNumberID string
	VerifyToken   string
}

// Configured reports whether outbound messages can be sent.
func (c MessagingConfig) Configured() bool {
	return c.Token != "" && c.PhoneNumberID != ""
}

// RedisConfig enables the distributed per-host referral lock.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AllowlistConfig is the deploy-time degraded-mode tier source.
type AllowlistConfig struct {
	HostEmails  []string
	GuestEmails []string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr: getenv("GUESTGATE_ADDR", ":8080"),
		Store: StoreConfig{
			URL:     os.Getenv("GUESTGATE_STORE_URL"),
			Key:     os.Getenv("GUESTGATE_STORE_KEY"),
			Table:   getenv("GUESTGATE_STORE_TABLE", "registrations"),
			Timeout: getduration("GUESTGATE_STORE_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("GUESTGATE_POSTGRES_DSN"),
		},
		Backup: BackupConfig{
			Path: getenv("GUESTGATE_BACKUP_PATH", "backup_registrations.csv"),
		},
		Messaging: MessagingConfig{
			Token:         os.Getenv("GUESTGATE_WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("GUESTGATE_WHATSAPP_PHONE_ID"),
			VerifyToken:   os.Getenv("GUESTGATE_WHATSAPP_VERIFY_TOKEN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("GUESTGATE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Allowlist: AllowlistConfig{
			HostEmails:  getlist("GUESTGATE_HOST_EMAILS"),
			GuestEmails: getlist("GUESTGATE_GUEST_EMAILS"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getlist(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
