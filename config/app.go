package config

type App struct {
	Port        string `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	Env         string `mapstructure:"env"`

	// cron specs for the maintenance jobs
	OverdueSweepSpec    string `mapstructure:"overdue_sweep_spec"`
	LateReturnSweepSpec string `mapstructure:"late_return_sweep_spec"`
	SuspensionSweepSpec string `mapstructure:"suspension_sweep_spec"`
	InactivitySweepSpec string `mapstructure:"inactivity_sweep_spec"`
}
