package config

const (
	defaultLogDir                   = "~/.local/share/omzet/logs"
	defaultStateDir                 = "~/.local/share/omzet"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultOrchestratorPollInterval = 5
	defaultMonitorScanInterval      = 60
	defaultMonitorRequestBuffer     = 256
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Orchestrator: Orchestrator{
			PollInterval:  defaultOrchestratorPollInterval,
			DedupInFlight: true,
		},
		Monitor: Monitor{
			ScanInterval:  defaultMonitorScanInterval,
			RequestBuffer: defaultMonitorRequestBuffer,
		},
	}
}
