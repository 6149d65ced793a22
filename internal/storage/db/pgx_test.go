package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
)

func TestConnectionString(t *testing.T) {
	t.Run("Should escape credentials and keep them parseable", func(t *testing.T) {
		cfg := config.Postgres{
			Host:            "db.internal",
			Port:            5433,
			User:            "store",
			Password:        "p@ss:w/rd",
			DB:              "digital_store",
			SSLMode:         "require",
			ApplicationName: "ds-relay",
		}

		pgConf, err := pgxpool.ParseConfig(connectionString(cfg))
		require.NoError(t, err)

		conn := pgConf.ConnConfig
		assert.Equal(t, "db.internal", conn.Host)
		assert.Equal(t, uint16(5433), conn.Port)
		assert.Equal(t, "store", conn.User)
		assert.Equal(t, "p@ss:w/rd", conn.Password)
		assert.Equal(t, "digital_store", conn.Database)
		assert.Equal(t, "ds-relay", conn.RuntimeParams["application_name"])
	})
}
