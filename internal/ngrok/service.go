// Package ngrok exposes the local view server through an ngrok tunnel so a
// device on another network can reach it.
package ngrok

import (
	"context"
	"fmt"

	"trackshelf/internal/config"

	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok/v2"
)

// Service represents the ngrok tunnel service
type Service struct {
	config *config.TunnelConfig
	agent  ngrok.Agent
	tunnel ngrok.EndpointForwarder
	logger *logrus.Logger
}

// NewService creates a tunnel service. It returns nil, nil when tunnelling
// is disabled; all methods are safe on a nil *Service.
func NewService(cfg *config.TunnelConfig, logger *logrus.Logger) (*Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("ngrok auth token not found; set %s in .env or config", config.EnvNgrokToken)
	}

	agent, err := ngrok.NewAgent(ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create ngrok agent: %w", err)
	}

	return &Service{
		config: cfg,
		agent:  agent,
		logger: logger,
	}, nil
}

// StartTunnel forwards a public endpoint to localAddress.
func (s *Service) StartTunnel(ctx context.Context, localAddress string) error {
	if s == nil {
		return nil
	}

	var endpointOpts []ngrok.EndpointOption
	if s.config.Domain != "" {
		endpointOpts = append(endpointOpts, ngrok.WithURL(s.config.Domain))
	}

	if s.config.EnableAuth {
		trafficPolicy := fmt.Sprintf(`
on_http_request:
  - actions:
      - type: oauth
        config:
          provider: %s
`, s.config.AuthProvider)
		endpointOpts = append(endpointOpts, ngrok.WithTrafficPolicy(trafficPolicy))
	}

	tunnel, err := s.agent.Forward(ctx, ngrok.WithUpstream(localAddress), endpointOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ngrok tunnel: %w", err)
	}
	s.tunnel = tunnel

	s.logger.WithFields(logrus.Fields{
		"public_url": tunnel.URL().String(),
		"upstream":   localAddress,
		"oauth":      s.config.EnableAuth,
	}).Info("Tunnel active")

	return nil
}

// GetPublicURL returns the public URL of the tunnel
func (s *Service) GetPublicURL() string {
	if s == nil || s.tunnel == nil {
		return ""
	}
	return s.tunnel.URL().String()
}

// Stop stops the ngrok tunnel
func (s *Service) Stop() error {
	if s == nil || s.tunnel == nil {
		return nil
	}

	s.logger.Info("Stopping tunnel")
	return s.tunnel.Close()
}
