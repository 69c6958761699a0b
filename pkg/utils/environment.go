package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig prepares viper to read settings from the process environment.
// Outside production a .env file in path is loaded first and overrides the
// environment, which is what local development expects.
func LoadConfig(path string) {
	if !IsProduction() {
		envFile := filepath.Join(path, ".env")
		if err := godotenv.Overload(envFile); err != nil {
			if !os.IsNotExist(err) {
				logrus.WithError(err).Warnf("[CONFIG] Could not load %s", envFile)
			}
		} else {
			logrus.Infof("[CONFIG] Loaded environment from %s", envFile)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// IsProduction reports whether RUNNING_IN_PRODUCTION is set to anything
// other than an explicit false value.
func IsProduction() bool {
	v := strings.TrimSpace(os.Getenv("RUNNING_IN_PRODUCTION"))
	switch strings.ToLower(v) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
