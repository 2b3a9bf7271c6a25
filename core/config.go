package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (local; default), TEST, QA, PROD
	AppName  string

	SecretKey    string
	RollbarToken string

	Server struct {
		Address            string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Database struct {
		URL string
	}

	Gemini struct {
		APIKey string
		URL    string
	}

	SeedAdmin struct {
		Username string
		Password string
	}
}

// LoadConfig loads the app configuration from the environment, with an optional
// `config/.env.<env>` dotenv file layered underneath. Environment variables are
// prefixed with the current ENV; eg. DEV_SECRETKEY, DEV_DATABASEURL.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kelasi")
	v.SetDefault("secretKey", "dev-secret-change-in-production")
	v.SetDefault("address", ":8000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("databaseUrl", "")
	v.SetDefault("geminiApiKey", "")
	v.SetDefault("geminiUrl", "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent")
	v.SetDefault("seedAdminUsername", "admin")
	v.SetDefault("seedAdminPassword", "admin123")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     env == "TEST",
		Env:          env,
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Server.Address = v.GetString("address")
	conf.Server.ShutdownTimeout = v.GetDuration("shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Database.URL = v.GetString("databaseUrl")
	conf.Gemini.APIKey = v.GetString("geminiApiKey")
	conf.Gemini.URL = v.GetString("geminiUrl")
	conf.SeedAdmin.Username = v.GetString("seedAdminUsername")
	conf.SeedAdmin.Password = v.GetString("seedAdminPassword")
	return conf, nil
}
