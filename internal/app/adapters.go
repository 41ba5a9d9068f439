package app

import (
	"github.com/hrdesk-io/hrdesk/internal/auth"
	"github.com/hrdesk-io/hrdesk/internal/database"
	"github.com/hrdesk-io/hrdesk/internal/services"
)

// JWTServiceConfig adapts the auth section for the token validator.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: c.JWT.TTL,
	}
}

// StoreConfig adapts the database section for the connection opener.
func (c DatabaseConfig) StoreConfig() database.Config {
	cfg := database.Config{
		Driver: c.Driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	switch c.Driver {
	case "postgres":
		cfg.Host = c.Postgres.Host
		cfg.Port = c.Postgres.Port
		cfg.Name = c.Postgres.Database
		cfg.User = c.Postgres.Username
		cfg.Password = c.Postgres.Password
	case "mysql":
		cfg.Host = c.MySQL.Host
		cfg.Port = c.MySQL.Port
		cfg.Name = c.MySQL.Database
		cfg.User = c.MySQL.Username
		cfg.Password = c.MySQL.Password
	}

	return cfg
}

// ServiceConfig adapts the uploads section for the request service.
func (c UploadsConfig) ServiceConfig() services.UploadConfig {
	return services.UploadConfig{
		Dir:      c.Dir,
		MaxBytes: c.MaxBytes,
	}
}
