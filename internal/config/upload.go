package config

// Upload configures where product files and cover images are stored.
type Upload struct {
	// Disk selects the blob driver: "local" or "s3".
	Disk string `env:"UPLOAD_DISK" envDefault:"local"`
	// Root is the upload root directory used by the local driver.
	Root string `env:"UPLOAD_ROOT" envDefault:"uploads"`
	// PublicPath is the URL prefix the local upload root is served under.
	PublicPath string `env:"UPLOAD_PUBLIC_PATH" envDefault:"/uploads"`

	ProductFileMaxMB int64 `env:"UPLOAD_PRODUCT_FILE_MAX_MB" envDefault:"1024"`
	CoverImageMaxMB  int64 `env:"UPLOAD_COVER_IMAGE_MAX_MB" envDefault:"10"`
}

// S3 configures the S3-compatible blob driver. Endpoint is left empty for AWS.
type S3 struct {
	Bucket   string `env:"S3_BUCKET"`
	Region   string `env:"S3_REGION" envDefault:"us-east-1"`
	Key      string `env:"S3_KEY"`
	Secret   string `env:"S3_SECRET"`
	Endpoint string `env:"S3_ENDPOINT"`
}
