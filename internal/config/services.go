package config

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceMode is a role the process can run.
type ServiceMode string

const (
	// ServiceAPI serves the HTTP job API.
	ServiceAPI ServiceMode = "api"
	// ServiceWorker runs the executor pool.
	ServiceWorker ServiceMode = "worker"
	// ServiceReaper runs expiry and recovery sweeps.
	ServiceReaper ServiceMode = "reaper"
)

// ParseServices parses a comma-delimited list of service names.
func ParseServices(s string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		mode := ServiceMode(name)
		switch mode {
		case ServiceAPI, ServiceWorker, ServiceReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: api, worker, reaper)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one service must be specified")
	}
	return services, nil
}
