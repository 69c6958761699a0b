package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// GetAllSettings returns the non-secret settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":        Global.App.Version,
		"app_debug":          Global.App.Debug,
		"production":         Global.App.Production,
		"openai_local":       Global.OpenAI.UsesLocalEndpoint(),
		"openai_api_version": Global.OpenAI.APIVersion,
		"openai_deployment":  Global.OpenAI.Deployment,
		"chat_trim_choices":  Global.OpenAI.TrimChoices,
		"cache_token_auth":   Global.Cache.TokenAuth,
		"auth_redirect_uri":  Global.Auth.RedirectURI,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := getEnv(key, ""); v != "" {
		switch strings.ToLower(v) {
		case "0", "false", "no", "off":
			return false
		}
		return true
	}
	return fallback
}
