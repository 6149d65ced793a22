package config

import "time"

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// Uploads of product files are large, so the read and write timeouts are
	// longer than what a plain JSON API would need.
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5m"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`

	// MultipartMemoryMB is the part of a multipart body kept in memory, the rest spills to temp files.
	MultipartMemoryMB int64 `env:"HTTP_MULTIPART_MEMORY_MB" envDefault:"32"`

	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}
