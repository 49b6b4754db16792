package configs

type Logger struct {
	AppName string `env:"LOGGER_APP_NAME" envDefault:"shift_bot"`
	URL     string `env:"LOKI_URL"`
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
}
