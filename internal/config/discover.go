package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// EnvConfigPath names an explicit config file and disables the search
	EnvConfigPath = "COMPOSER_CONFIG"
	// ConfigName is the config file name, without extension, and the
	// directory name under the config roots
	ConfigName = "composer"
)

// SearchPaths lists the directories searched for composer.yaml, first
// match wins.
func SearchPaths() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, ConfigName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigName))
	}
	return append(dirs, filepath.Join("/etc", ConfigName))
}

// readDiscovered reads $COMPOSER_CONFIG, or the first composer.yaml on
// SearchPaths, into v. It returns the file read; "" means none was found
// and v holds defaults only.
func readDiscovered(v *viper.Viper) (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return "", nil
		}
		return v.ConfigFileUsed(), fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}
