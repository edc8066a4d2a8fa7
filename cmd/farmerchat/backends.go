package main

import (
	"github.com/ashureev/farmerchat/internal/backend"
	"github.com/ashureev/farmerchat/internal/config"
)

type backends struct {
	cfg     *config.Config
	queries *backend.QueryClient
	alerts  *backend.AlertClient
}

func openBackends() (*backends, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client := backend.NewClient(cfg.Backend.Timeout)
	client.SetUserAgent("farmerchat-cli/" + version)
	return &backends{
		cfg:     cfg,
		queries: backend.NewQueryClient(client, cfg.Backend.QueryURL),
		alerts:  backend.NewAlertClient(client, cfg.Backend.AlertURL),
	}, nil
}
