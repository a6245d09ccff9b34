package config

import (
	env "github.com/caarlos0/env/v11"
)

// Overrides are process-environment settings that take precedence over
// the YAML file. They mirror the knobs the scheduled CI jobs expose, so
// secrets never have to live in the config file.
type Overrides struct {
	// TargetDate forces the pipeline's "today" (YYYY-MM-DD) for reruns.
	TargetDate string `env:"TARGET_DATE"`
	// IncludeFuture keeps future-dated events in snapshots.
	IncludeFuture bool `env:"INCLUDE_FUTURE"`
	// DryRun builds and logs the digest without sending it.
	DryRun bool `env:"DRY_RUN"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	LineNotifyToken string `env:"LINE_NOTIFY_TOKEN"`
}

// LoadOverrides reads overrides from the process environment.
func LoadOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, err
	}
	return o, nil
}

// Apply folds non-empty overrides into the configuration.
func (c *Config) Apply(o Overrides) {
	if o.IncludeFuture {
		c.IncludeFuture = true
	}
	if o.SlackWebhookURL != "" {
		c.Notify.SlackWebhookURL = o.SlackWebhookURL
	}
	if o.LineNotifyToken != "" {
		c.Notify.LineNotifyToken = o.LineNotifyToken
	}
}
