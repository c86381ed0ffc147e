package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicroom/memberdesk/internal/config"
)

func TestDialectSelectsDriver(t *testing.T) {
	dialector, err := Dialect(Config{Type: "sqlite", Name: "file::memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dialector.Name())

	_, err = Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestFromAppConfigMapsConnectionSettings(t *testing.T) {
	cfg := fromAppConfig(config.Config{
		DBType:            "postgres",
		DBHost:            "db.internal",
		DBPort:            "5432",
		DBName:            "memberdesk",
		DBUser:            "svc",
		DBPassword:        "secret",
		DBSSLMode:         "require",
		DBMaxIdleConn:     5,
		DBMaxOpenConn:     25,
		DBConnMaxLifetime: 300,
		DBConnMaxIdleTime: 60,
	})

	assert.Equal(t, Config{
		Type:            "postgres",
		Host:            "db.internal",
		Port:            "5432",
		Name:            "memberdesk",
		User:            "svc",
		Password:        "secret",
		SSLMode:         "require",
		MaxIdleConn:     5,
		MaxOpenConn:     25,
		ConnMaxLifetime: 300,
		ConnMaxIdleTime: 60,
	}, cfg)
}
