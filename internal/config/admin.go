package config

// Admin seeds an administrator account on migration. Seeding is skipped when Email is empty.
type Admin struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}
