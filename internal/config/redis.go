package config

import "time"

type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Cache struct {
	ProductTTL time.Duration `env:"CACHE_PRODUCT_TTL" envDefault:"5m"`
}
