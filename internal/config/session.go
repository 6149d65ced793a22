package config

import "time"

type Session struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"ds_session"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	Secure     bool          `env:"SESSION_SECURE" envDefault:"false"`
}
