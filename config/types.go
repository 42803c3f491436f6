package config

// Log controls structured log output. Logs go to stdout unless File
// names a path, in which case output rotates by size and age.
type Log struct {
	Service     string `toml:"Service"`
	Environment string `toml:"Environment"`
	Level       string `toml:"Level"`
	File        string `toml:"File"`
	MaxSizeMB   int    `toml:"MaxSizeMB"`
	MaxBackups  int    `toml:"MaxBackups"`
	MaxAgeDays  int    `toml:"MaxAgeDays"`
}

// Telemetry configures the OTLP trace and metric exporters.
type Telemetry struct {
	Enabled  bool   `toml:"Enabled"`
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Headers  string `toml:"Headers"`
	Metrics  bool   `toml:"Metrics"`
	Traces   bool   `toml:"Traces"`
}
