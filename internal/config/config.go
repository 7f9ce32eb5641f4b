/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable application configuration.
// It is persisted to a YAML file in the user scope; environment variables
// are treated as read-only overrides at runtime. The office-backend token
// is never written to disk; it lives in the OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// ScheduleConfig carries the day-scheduling defaults the engine is fed
// with when a production does not override them.
type ScheduleConfig struct {
	WordsPerPage     int    `yaml:"words_per_page"`
	SetupMinutes     int    `yaml:"setup_minutes"`
	SetupsInterior   int    `yaml:"setups_interior"`
	SetupsExterior   int    `yaml:"setups_exterior"`
	MoveDurationMin  int    `yaml:"move_duration_min"`
	LunchDurationMin int    `yaml:"lunch_duration_min"`
	StartTime        string `yaml:"start_time"` // "HH:MM", 24h
}

// BackendConfig points at the optional production-office backend.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
	PGDSN     string `yaml:"pg_dsn"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Schedule      ScheduleConfig `yaml:"schedule"`
	Backend       BackendConfig  `yaml:"backend"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults. The scheduling numbers match
// the toolkit's long-standing conventions: 150 words to a script page,
// 5 minutes of lighting and camera work per setup, 3 setups for an
// interior and 5 for an exterior, a 10 minute company move, a one hour
// lunch, and an 08:00 call.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Schedule: ScheduleConfig{
			WordsPerPage:     150,
			SetupMinutes:     5,
			SetupsInterior:   3,
			SetupsExterior:   5,
			MoveDurationMin:  10,
			LunchDurationMin: 60,
			StartTime:        "08:00",
		},
		Backend: BackendConfig{BaseURL: "", TimeoutMs: 10000},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvWordsPerPage   = "PTK_WORDS_PER_PAGE"
	EnvSetupMinutes   = "PTK_SETUP_MINUTES"
	EnvStartTime      = "PTK_START_TIME"
	EnvBackendURL     = "PTK_BACKEND_URL"
	EnvBackendTimeout = "PTK_BACKEND_TIMEOUT_MS"
	EnvBackendPGDSN   = "PTK_PG_DSN"
	EnvLogLevel       = "PTK_LOG_LEVEL"
	EnvLogFormat      = "PTK_LOG_FORMAT"
	EnvLogSource      = "PTK_LOG_SOURCE"
	EnvLogFile        = "PTK_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "ProducersToolkit"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the OS keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ProducersToolkit")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ProducersToolkit")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "producers-toolkit")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides. The backend token is fetched from the
// keyring and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// schedule: zero means "not set" for every field here; a words-per-page
	// or start time of zero is not a meaningful user choice
	if src.Schedule.WordsPerPage > 0 {
		dst.Schedule.WordsPerPage = src.Schedule.WordsPerPage
	}
	if src.Schedule.SetupMinutes > 0 {
		dst.Schedule.SetupMinutes = src.Schedule.SetupMinutes
	}
	if src.Schedule.SetupsInterior > 0 {
		dst.Schedule.SetupsInterior = src.Schedule.SetupsInterior
	}
	if src.Schedule.SetupsExterior > 0 {
		dst.Schedule.SetupsExterior = src.Schedule.SetupsExterior
	}
	if src.Schedule.MoveDurationMin > 0 {
		dst.Schedule.MoveDurationMin = src.Schedule.MoveDurationMin
	}
	if src.Schedule.LunchDurationMin > 0 {
		dst.Schedule.LunchDurationMin = src.Schedule.LunchDurationMin
	}
	if strings.TrimSpace(src.Schedule.StartTime) != "" {
		dst.Schedule.StartTime = strings.TrimSpace(src.Schedule.StartTime)
	}
	// backend
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	if src.Backend.PGDSN != "" {
		dst.Backend.PGDSN = src.Backend.PGDSN
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWordsPerPage)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Schedule.WordsPerPage = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSetupMinutes)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Schedule.SetupMinutes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStartTime)); v != "" {
		cfg.Schedule.StartTime = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendPGDSN)); v != "" {
		cfg.Backend.PGDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}
