package models

// Health is the dashboard's liveness response.
type Health struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Version   string           `json:"version,omitempty"`
	BuildTime string           `json:"buildTime,omitempty"`
	Providers []ProviderStatus `json:"providers,omitempty"`
	Scheduler any              `json:"scheduler,omitempty"`
}

// ProviderStatus is the circuit state of one upstream dependency.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	LastError           string       `json:"lastError,omitempty"`
}
