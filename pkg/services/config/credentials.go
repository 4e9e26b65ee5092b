package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/metagrowth/growth-agent/pkg/session"
	"gopkg.in/ini.v1"
)

const (
	DefaultProfile = "default"
	hostKey        = "host"
)

// Profile is one section of the credentials file
type Profile struct {
	Name      string
	Host      string
	AuthToken string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, profile string) (*Profile, error)
	SetHost(ctx context.Context, profile, host string) error
	SetToken(ctx context.Context, profile, token string) error
}

type cfgRegistry struct {
	mu   sync.Mutex
	path string
	cfg  *ini.File
}

// NewRegistry opens the credentials file at path. A missing file is treated
// as empty and created on first save.
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{path: path, cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, profile string) (*Profile, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	return &Profile{
		Name:      profile,
		Host:      section.Key(hostKey).String(),
		AuthToken: section.Key(session.TokenKey).String(),
	}, nil
}

// SetHost records the backend host of a profile and keeps its token
func (cr *cfgRegistry) SetHost(_ context.Context, profile, host string) error {
	return cr.update(profile, func(section *ini.Section) {
		section.Key(hostKey).SetValue(host)
	})
}

// SetToken stores the auth token of a profile; an empty token removes it
func (cr *cfgRegistry) SetToken(_ context.Context, profile, token string) error {
	return cr.update(profile, func(section *ini.Section) {
		if token == "" {
			section.DeleteKey(session.TokenKey)
			return
		}
		section.Key(session.TokenKey).SetValue(token)
	})
}

func (cr *cfgRegistry) update(profile string, fn func(section *ini.Section)) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	fn(cr.cfg.Section(profile))

	if err := os.MkdirAll(filepath.Dir(cr.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := cr.cfg.SaveTo(cr.path); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Chmod(cr.path, 0o600)
}

type profileTokenStore struct {
	registry Registry
	profile  string
}

// NewTokenStore persists the session token in one profile of the registry
func NewTokenStore(registry Registry, profile string) session.TokenStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &profileTokenStore{registry: registry, profile: profile}
}

func (s *profileTokenStore) Load() (string, error) {
	p, err := s.registry.GetProfile(context.Background(), s.profile)
	if err != nil {
		return "", err
	}
	return p.AuthToken, nil
}

func (s *profileTokenStore) Save(token string) error {
	return s.registry.SetToken(context.Background(), s.profile, token)
}

func (s *profileTokenStore) Clear() error {
	return s.Save("")
}
