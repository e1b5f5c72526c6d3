package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oriys/polaris/internal/domain"
	"github.com/oriys/polaris/internal/membership"
	"github.com/oriys/polaris/internal/override"
)

// fixture is the YAML document describing workspaces and overrides the CLI
// evaluates checks against.
type fixture struct {
	Workspaces []fixtureWorkspace `yaml:"workspaces"`
	Overrides  []fixtureOverride  `yaml:"overrides"`
}

type fixtureWorkspace struct {
	ID      string            `yaml:"id"`
	Owner   string            `yaml:"owner"`
	Members map[string]string `yaml:"members"`
}

type fixtureOverride struct {
	Resource string   `yaml:"resource"`
	User     string   `yaml:"user"`
	Grant    []string `yaml:"grant"`
	Revoke   []string `yaml:"revoke"`
}

// loadFixture parses the fixture and materializes a membership registry and
// override store from it.
func loadFixture(ctx context.Context, path string) (*membership.Registry, *override.MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read fixture: %w", err)
	}

	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(fx.Workspaces) == 0 {
		return nil, nil, fmt.Errorf("fixture %s defines no workspaces", path)
	}

	registry := membership.NewRegistry()
	for _, ws := range fx.Workspaces {
		if ws.ID == "" || ws.Owner == "" {
			return nil, nil, fmt.Errorf("fixture workspace needs id and owner")
		}
		registry.CreateWorkspace(ws.ID, ws.Owner)
		for user, role := range ws.Members {
			r := domain.Role(role)
			if !domain.ValidRole(r) {
				return nil, nil, fmt.Errorf("fixture member %s has unknown role %q", user, role)
			}
			registry.SetMember(ws.ID, user, r)
		}
	}

	overrides := override.NewMemoryStore()
	for _, ov := range fx.Overrides {
		if ov.Resource == "" || ov.User == "" {
			return nil, nil, fmt.Errorf("fixture override needs resource and user")
		}
		for _, a := range ov.Grant {
			if err := overrides.Grant(ctx, ov.Resource, ov.User, domain.Action(a)); err != nil {
				return nil, nil, err
			}
		}
		for _, a := range ov.Revoke {
			if err := overrides.Revoke(ctx, ov.Resource, ov.User, domain.Action(a)); err != nil {
				return nil, nil, err
			}
		}
	}

	return registry, overrides, nil
}
