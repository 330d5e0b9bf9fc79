package serverconfig

// Valid rollout strategies.
var validRolloutStrategies = map[string]bool{
	"":              true, // Empty defaults to managed
	StrategyManaged: true,
	StrategyFixed:   true,
}

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":          true, // Empty defaults to info
	LevelDebug:  true,
	LevelInfo:   true,
	LevelWarn:   true,
	LevelError:  true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":        true, // Empty defaults to json
	"json":    true,
	"console": true,
}

// Validate checks the configuration for errors.
// It validates all required fields, valid values, and cross-field constraints.
// Returns a ValidationError containing all errors found, or nil if valid.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateRollout(c, errs)
	validateLogging(c, errs)
	validateAuth(c, errs)

	return errs.ToError()
}

// validateRollout validates the rollout configuration section.
func validateRollout(c *Config, errs *ValidationError) {
	strategy := c.Rollout.Strategy
	if !validRolloutStrategies[strategy] {
		errs.Addf("rollout.rollout_strategy is invalid (got %q, valid: managed, fixed)", strategy)
	}

	// service_name is required when CM is actually going to poll a backend;
	// under "fixed" the proxy never looks it up.
	if c.Rollout.IsManaged() && c.Rollout.ServiceName == "" {
		errs.Add("rollout.service_name is required when rollout_strategy is managed")
	}

	if c.Rollout.BootstrapConfigID == "" {
		errs.Add("rollout.bootstrap_config_id is required")
	}

	if c.Rollout.RefreshIntervalMS < 0 {
		errs.Add("rollout.refresh_interval_ms must be >= 0")
	}
}

// validateLogging validates the logging configuration section.
func validateLogging(c *Config, errs *ValidationError) {
	if !validLogLevels[c.Logging.Level] {
		errs.Addf("logging.level is invalid (got %q, valid: debug, info, warn, error)",
			c.Logging.Level)
	}

	if !validLogFormats[c.Logging.Format] {
		errs.Addf("logging.format is invalid (got %q, valid: json, console)",
			c.Logging.Format)
	}
}

// validateAuth validates the outbound auth configuration section.
func validateAuth(c *Config, errs *ValidationError) {
	if !c.Rollout.IsManaged() {
		// fixed strategy never issues outbound calls, so auth is irrelevant.
		return
	}

	if c.Auth.StaticToken == "" && c.Auth.OAuthScope == "" {
		errs.Add("auth.static_token or auth.oauth_scope is required when rollout_strategy is managed")
	}
}
