package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *AppConfig {
	config := new(AppConfig)
	config.AppID = "learniq"
	config.Env = EnvProduction
	config.CORS.AllowOrigins = []string{"http://localhost:3000"}
	config.Database.Driver = "postgres"
	config.Database.Host = "127.0.0.1"
	config.Database.MaxConn = 5
	config.Database.Password = "pw"
	config.Database.Schema = "learniq"
	config.Database.User = "learniq"
	config.Logging.Level = "info"
	config.Security.IDLength = 12
	config.Security.JWTMethod = "HS256"
	config.Security.JWTSecret = "secret"
	config.Security.TokenName = "access_token"
	config.KVStore.Password = "pw"
	config.Chat.APIKey = "sk-test"
	config.Chat.BaseURL = "https://api.openai.com"
	config.Chat.Model = "gpt-4o-mini"
	return config
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(validConfig()))

	config := validConfig()
	config.Chat.APIKey = ""
	err := validateConfig(config)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "api_key is required")
		assert.NotContains(t, err.Error(), "sk-test")
	}
}

func TestValidateConfigJWTMethod(t *testing.T) {
	for _, method := range []string{"HS256", "HS512"} {
		config := validConfig()
		config.Security.JWTMethod = method
		assert.NoError(t, validateConfig(config), method)
	}

	config := validConfig()
	config.Security.JWTMethod = "ES256"
	err := validateConfig(config)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "security.jwt_method must be one of (HS256 HS512)")
	}
}
