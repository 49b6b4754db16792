package configs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	Enabled           bool   `env:"SCHEDULER_ENABLED" envDefault:"true"`
	Timezone          string `env:"TIMEZONE" envDefault:"Asia/Novosibirsk"`
	OpenReminderCron  string `env:"OPEN_REMINDER_CRON" envDefault:"50 8 * * *"`
	ShiftPollCron     string `env:"SHIFT_POLL_CRON" envDefault:"0 20 * * *"`
	CloseReminderCron string `env:"CLOSE_REMINDER_CRON" envDefault:"55 20 * * *"`
}

func (c Scheduler) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c Scheduler) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	for name, spec := range map[string]string{
		"OPEN_REMINDER_CRON":  c.OpenReminderCron,
		"SHIFT_POLL_CRON":     c.ShiftPollCron,
		"CLOSE_REMINDER_CRON": c.CloseReminderCron,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	return nil
}
