package config

import (
	"fmt"
	"log"
	"strings"
)

// Validator checks a loaded configuration. Errors abort startup, warnings
// are logged.
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

// NewValidator creates a validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{config: cfg}
}

func (v *Validator) Validate() error {
	v.errors, v.warnings = nil, nil

	if p := v.config.Server.Port; p < 0 || p > 65535 {
		v.errors = append(v.errors, fmt.Sprintf("server.port %d is out of range", p))
	}
	if v.config.Scenario.Name == "" {
		v.errors = append(v.errors, "scenario.name is not set")
	}
	if v.config.JWT.TTL < 0 {
		v.errors = append(v.errors, "jwt.ttl must not be negative")
	}
	switch {
	case v.config.JWT.Secret == "":
		v.errors = append(v.errors, "jwt.secret is not set")
	case v.config.JWT.Secret == DefaultSecret:
		v.warnings = append(v.warnings, "jwt.secret is using the development default")
	}
	if v.config.Metrics.Enabled && !strings.HasPrefix(v.config.Metrics.Path, "/") {
		v.errors = append(v.errors, fmt.Sprintf("metrics.path %q must start with /", v.config.Metrics.Path))
	}
	if v.config.Scenario.Watch && v.config.Scenario.Dir == "" {
		v.warnings = append(v.warnings, "scenario.watch has no effect without scenario.dir")
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	for _, w := range v.warnings {
		log.Printf("[config] warning: %s", w)
	}
	return nil
}

// Warnings returns the warnings of the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}
