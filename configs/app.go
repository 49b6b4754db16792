package configs

type App struct {
	Environment        string `env:"ENVIRONMENT,notEmpty"`
	HealthCheckAddress string `env:"HEALTH_CHECK_ADDRESS" envDefault:":8080"`
}

func (c App) IsDevEnvironment() bool {
	return c.Environment == "dev"
}
