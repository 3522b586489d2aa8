package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ConfigDir returns the widgetmcp configuration directory.
// Respects WIDGETMCP_CONFIG_DIR override.
func ConfigDir() (string, error) {
	if dir := os.Getenv("WIDGETMCP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "widgetmcp"), nil
}

// LogDir returns the directory for widgetmcp log files.
func LogDir() (string, error) {
	if runtime.GOOS == "darwin" && os.Getenv("WIDGETMCP_CONFIG_DIR") == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("log dir: %w", err)
		}
		return filepath.Join(home, "Library", "Logs", "widgetmcp"), nil
	}
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, "logs"), nil
}

// ConfigFilePath returns the path to config.json.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// PIDFilePath returns the path to the server PID file.
func PIDFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "widgetmcp.pid"), nil
}

// WritePID records pid and the listen address in the PID file.
func WritePID(pid int, listen string) error {
	path, err := PIDFilePath()
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, []byte(fmt.Sprintf("%d\n%s\n", pid, listen)), 0600)
}

// ReadPID returns the PID and listen address recorded by a running server.
func ReadPID() (int, string, error) {
	path, err := PIDFilePath()
	if err != nil {
		return 0, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", fmt.Errorf("read PID file: %w", err)
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, "", fmt.Errorf("invalid PID file %s: %w", path, err)
	}
	listen := ""
	if len(lines) > 1 {
		listen = strings.TrimSpace(lines[1])
	}
	return pid, listen, nil
}

// RemovePID deletes the PID file, ignoring a missing file.
func RemovePID() {
	if path, err := PIDFilePath(); err == nil {
		os.Remove(path)
	}
}
