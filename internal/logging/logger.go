package logging

import (
	"fmt"

	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger in production and a console logger elsewhere
func New(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level.SetLevel(lvl)
	}

	return cfg.Build()
}

// ConfigFields describes cfg for a start-up log line with secrets left out
func ConfigFields(cfg *config.Config) []zap.Field {
	return []zap.Field{
		zap.Int("port", cfg.App.Port),
		zap.String("env", cfg.App.Env),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("jwt_issuer", cfg.JWT.Issuer),
		zap.Duration("jwt_access_ttl", cfg.JWT.AccessTTL),
		zap.String("totp_issuer", cfg.TOTP.Issuer),
		zap.String("totp_pending_store", cfg.TOTP.PendingStore),
		zap.Int("bcrypt_cost", cfg.Password.BcryptCost),
	}
}
