package di

import (
	"context"
	"time"

	"shift_coordination_system/configs"

	zaploki "github.com/paul-milne/zap-loki"
	"go.uber.org/zap"
)

func NewLogger(config configs.Logger, environment string) *zap.SugaredLogger {
	zapConfig := zap.NewProductionConfig()

	if level, err := zap.ParseAtomicLevel(config.Level); err == nil {
		zapConfig.Level = level
	}

	if config.URL == "" {
		return zap.Must(zapConfig.Build()).Sugar()
	}

	ctx := context.Background()
	lokiConfig := zaploki.Config{
		Url:          config.URL,
		BatchMaxSize: 1000,
		BatchMaxWait: 10 * time.Second,
		Labels: map[string]string{
			"app":         config.AppName,
			"environment": environment,
		},
	}
	return zap.Must(zaploki.New(ctx, lokiConfig).WithCreateLogger(zapConfig)).Sugar()
}
