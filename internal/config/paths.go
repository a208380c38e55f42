package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "GIGSAFE_CONFIG"
	// ConfigFileName is the config file looked for in the working directory
	ConfigFileName = "gigsafe.yaml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "gigsafe"
)

// FindConfigPath returns the first config file found, in priority order:
// $GIGSAFE_CONFIG, ./gigsafe.yaml, then config.yaml under
// $XDG_CONFIG_HOME/gigsafe, ~/.config/gigsafe and /etc/gigsafe.
// A file that exists but does not parse is still returned so that loading
// reports it. Returns "" when there is no config file.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if path := search("gigsafe", "."); path != "" {
		return path
	}
	return search("config", searchDirs()...)
}

// search asks viper for name.yaml in dirs, in order
func search(name string, dirs ...string) string {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return ""
	}
	return v.ConfigFileUsed()
}

func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, ConfigDirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}
	return append(dirs, filepath.Join("/etc", ConfigDirName))
}

// DefaultConfigPath is where "config init" writes a new file: the user
// config directory, or the working directory when there is none.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, ConfigDirName, "config.yaml")
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}
