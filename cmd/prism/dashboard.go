package main

import (
	"fmt"
	"strings"

	"github.com/prismhq/prism/internal/aggregate"
	"github.com/prismhq/prism/internal/config"
	"github.com/prismhq/prism/internal/store"
	"github.com/prismhq/prism/internal/tui"
)

func aggregateOptions(cfg config.Config) aggregate.Options {
	return aggregate.Options{
		RequestTokenScale:  cfg.Aggregate.RequestTokenScale,
		InputCostPerToken:  cfg.Aggregate.InputCostPerToken,
		OutputCostPerToken: cfg.Aggregate.OutputCostPerToken,
	}
}

func requireIdentity(cfg config.Config, flagValue string) (string, error) {
	identity := strings.TrimSpace(flagValue)
	if identity == "" {
		identity = strings.TrimSpace(cfg.Identity)
	}
	if identity == "" {
		return "", fmt.Errorf("no identity: pass --identity or set it in %s", config.ConfigPath())
	}
	return identity, nil
}

func runDashboard(cfg config.Config) error {
	identity, err := requireIdentity(cfg, "")
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	return tui.Run(st, identity, aggregateOptions(cfg))
}
