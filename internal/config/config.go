// Package config loads environment configuration for padrelay.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultRelayHost   = "127.0.0.1"
	defaultRelayPort   = 8765
	defaultWebHost     = "0.0.0.0"
	defaultWebPort     = 5000
	defaultMouseSens   = 1.0
	defaultJoySens     = 1.0
	defaultMaxMovePx   = 200
	defaultMaxScroll   = 120
	defaultMouseHz     = 500
	defaultInputMode   = 1
	defaultKbmCamSens  = 5.0
	defaultKbmCamSpeed = 18.0
	defaultDataDir     = "./data"
)

// Host holds runtime configuration for the injection process.
type Host struct {
	ListenHost    string
	ListenPort    int
	MouseSens     float64
	JoySens       float64
	MaxMovePx     int
	MaxScroll     int
	EnableGamepad bool
	MouseHz       int
	InputMode     int
	KbmCamSens    float64
	KbmCamSpeed   float64
	LogInput      bool
}

// ListenAddr returns the relay listen address as host:port.
func (h Host) ListenAddr() string {
	return net.JoinHostPort(h.ListenHost, strconv.Itoa(h.ListenPort))
}

// Web holds runtime configuration for the control process.
type Web struct {
	Host      string
	Port      int
	Token     string
	RelayHost string
	RelayPort int
}

// ListenAddr returns the web listen address as host:port.
func (w Web) ListenAddr() string {
	return net.JoinHostPort(w.Host, strconv.Itoa(w.Port))
}

// RelayAddr returns the relay host address as host:port.
func (w Web) RelayAddr() string {
	return net.JoinHostPort(w.RelayHost, strconv.Itoa(w.RelayPort))
}

// LoadHost reads injection-process settings from data/.env and environment
// variables.
func LoadHost() (Host, error) {
	if err := loadEnvFile(filepath.Join(defaultDataDir, ".env")); err != nil {
		return Host{}, err
	}

	cfg := Host{
		ListenHost: envString("PADRELAY_RELAY_LISTEN_HOST", defaultRelayHost),
	}

	var err error
	if cfg.ListenPort, err = envInt("PADRELAY_RELAY_PORT", defaultRelayPort); err != nil {
		return Host{}, err
	}
	if cfg.MouseSens, err = envFloat("PADRELAY_MOUSE_SENS", defaultMouseSens); err != nil {
		return Host{}, err
	}
	if cfg.JoySens, err = envFloat("PADRELAY_JOYSTICK_SENS", defaultJoySens); err != nil {
		return Host{}, err
	}
	if cfg.MaxMovePx, err = envInt("PADRELAY_MAX_MOVE_PX", defaultMaxMovePx); err != nil {
		return Host{}, err
	}
	if cfg.MaxScroll, err = envInt("PADRELAY_MAX_SCROLL", defaultMaxScroll); err != nil {
		return Host{}, err
	}
	if cfg.MouseHz, err = envInt("PADRELAY_MOUSE_HZ", defaultMouseHz); err != nil {
		return Host{}, err
	}
	if cfg.InputMode, err = envInt("PADRELAY_INPUT_MODE", defaultInputMode); err != nil {
		return Host{}, err
	}
	if cfg.KbmCamSens, err = envFloat("PADRELAY_KBM_CAM_SENS", defaultKbmCamSens); err != nil {
		return Host{}, err
	}
	if cfg.KbmCamSpeed, err = envFloat("PADRELAY_KBM_CAM_SPEED", defaultKbmCamSpeed); err != nil {
		return Host{}, err
	}
	cfg.EnableGamepad = envBool("PADRELAY_ENABLE_GAMEPAD", false)
	cfg.LogInput = envBool("PADRELAY_LOG_INPUT", false)

	if cfg.MaxMovePx <= 0 {
		return Host{}, fmt.Errorf("PADRELAY_MAX_MOVE_PX must be > 0")
	}
	if cfg.MaxScroll <= 0 {
		return Host{}, fmt.Errorf("PADRELAY_MAX_SCROLL must be > 0")
	}

	return cfg, nil
}

// LoadWeb reads control-process settings from data/.env and environment
// variables.
func LoadWeb() (Web, error) {
	if err := loadEnvFile(filepath.Join(defaultDataDir, ".env")); err != nil {
		return Web{}, err
	}

	cfg := Web{
		Host:      envString("PADRELAY_HOST", defaultWebHost),
		Token:     strings.TrimSpace(os.Getenv("PADRELAY_TOKEN")),
		RelayHost: envString("PADRELAY_RELAY_HOST", defaultRelayHost),
	}

	var err error
	if cfg.Port, err = envInt("PADRELAY_PORT", defaultWebPort); err != nil {
		return Web{}, err
	}
	if cfg.RelayPort, err = envInt("PADRELAY_RELAY_PORT", defaultRelayPort); err != nil {
		return Web{}, err
	}

	return cfg, nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envFloat returns a float env override when present, otherwise a default.
func envFloat(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(value, `"'`)
	return key, value, true
}
