// Package platform composes the environment's deployable units: the network
// stack, the cluster stack with its node pools, and the cluster add-ons.
package platform

import (
	"fmt"
	"os"
)

// Environment variables supplying the default deployment target.
const (
	EnvAccount = "CDK_DEFAULT_ACCOUNT"
	EnvRegion  = "CDK_DEFAULT_REGION"
)

// Config identifies the deployment target. Builders receive it explicitly
// and never read the process environment themselves.
type Config struct {
	Account string
	Region  string
}

// Validate checks that both target fields are set.
func (c Config) Validate() error {
	if c.Account == "" {
		return fmt.Errorf("config: account is required")
	}
	if c.Region == "" {
		return fmt.Errorf("config: region is required")
	}
	return nil
}

// ConfigFromEnv reads the default target from the environment. Intended for
// the CLI entry point only.
func ConfigFromEnv() (Config, error) {
	c := Config{
		Account: os.Getenv(EnvAccount),
		Region:  os.Getenv(EnvRegion),
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w (set %s and %s)", err, EnvAccount, EnvRegion)
	}
	return c, nil
}
