package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"digital-store"`

	// Group is the consumer group of the product cache invalidator.
	Group string `env:"KAFKA_GROUP" envDefault:"digital-store-product-cache"`

	// ProduceTimeout bounds one relayed outbox message, broker acknowledgement included.
	ProduceTimeout time.Duration `env:"KAFKA_PRODUCE_TIMEOUT" envDefault:"10s"`
}
