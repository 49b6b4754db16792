package configs

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type ShiftBotConfig struct {
	App       App
	Bot       Bot
	DB        DB
	Logger    Logger
	Polls     Polls
	Scheduler Scheduler
	Shifts    Shifts
}

func LoadShiftBotConfig() (ShiftBotConfig, error) {
	var config ShiftBotConfig

	if err := env.Parse(&config); err != nil {
		return ShiftBotConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Polls.Validate(); err != nil {
		return ShiftBotConfig{}, fmt.Errorf("failed to validate polls config: %w", err)
	}

	if err := config.Scheduler.Validate(); err != nil {
		return ShiftBotConfig{}, fmt.Errorf("failed to validate scheduler config: %w", err)
	}

	return config, nil
}

// LoadDBConfig parses only what the migrate command needs.
func LoadDBConfig() (DB, Logger, error) {
	var config struct {
		DB     DB
		Logger Logger
	}

	if err := env.Parse(&config); err != nil {
		return DB{}, Logger{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config.DB, config.Logger, nil
}
