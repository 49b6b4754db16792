package configs

type Shifts struct {
	BaseRate    float64 `env:"SHIFT_BASE_RATE" envDefault:"1400"`
	Comment     string  `env:"SHIFT_AUTO_COMMENT" envDefault:"Автоматически создано из опроса смены"`
	SyncComment string  `env:"SHIFT_SYNC_COMMENT" envDefault:"Автоматически создано из опроса синхронизации"`
}
