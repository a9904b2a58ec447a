package configs

// Telemetry configures OTLP trace export.
type Telemetry struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"mesa-vesting"`
	// Insecure disables TLS towards the collector.
	Insecure bool `env:"INSECURE" envDefault:"true"`
}

// Active reports whether an exporter should be installed.
func (t Telemetry) Active() bool {
	return t.Enabled && t.Endpoint != ""
}
