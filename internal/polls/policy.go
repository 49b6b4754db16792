package polls

import (
	"time"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/db/models"
)

type Policy struct {
	InitialDeadline   time.Duration
	ExtensionDeadline time.Duration
	MaxExtensions     int
	// DayOffset is added to the poll's start date to get the shift date.
	DayOffset int
}

type Policies map[models.PollPurpose]Policy

func PoliciesFromConfig(config configs.Polls) Policies {
	return Policies{
		models.PollPurposeShift: {
			InitialDeadline:   config.ShiftDeadline,
			ExtensionDeadline: config.ShiftExtension,
			MaxExtensions:     config.ShiftMaxExtensions,
			DayOffset:         1,
		},
		models.PollPurposeSync: {
			InitialDeadline:   config.SyncDeadline,
			ExtensionDeadline: config.SyncExtension,
			MaxExtensions:     config.SyncMaxExtensions,
			DayOffset:         0,
		},
	}
}
