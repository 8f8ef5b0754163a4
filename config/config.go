package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	AppSecret         string `mapstructure:"APP_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Facebook app credentials and the public URL the consent dialog redirects back to.
	FBAppID       string `mapstructure:"FB_APP_ID"`
	FBAppSecret   string `mapstructure:"FB_APP_SECRET"`
	BridgeBaseURL string `mapstructure:"BRIDGE_BASE_URL"`

	// Graph API endpoints.
	GraphBaseURL   string        `mapstructure:"GRAPH_BASE_URL"`
	OAuthDialogURL string        `mapstructure:"OAUTH_DIALOG_URL"`
	TokenTimeout   time.Duration `mapstructure:"TOKEN_TIMEOUT"`
	PageTimeout    time.Duration `mapstructure:"PAGE_TIMEOUT"`

	// Handoff store.
	HandoffBackend string        `mapstructure:"HANDOFF_BACKEND"`
	HandoffTTL     time.Duration `mapstructure:"HANDOFF_TTL"`

	// Redis configuration, only used by the redis handoff backend.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisHandoffDB int    `mapstructure:"REDIS_HANDOFF_DB"`
}

const (
	DefaultGraphBaseURL   = "https://graph.facebook.com/v19.0"
	DefaultOAuthDialogURL = "https://www.facebook.com/v19.0/dialog/oauth"
)

var AppConfig Config

func setDefaults(v *viper.Viper) {
	// No default for the port: PORT is consulted when APP_PORT is absent.
	_ = v.BindEnv("APP_PORT")
	_ = v.BindEnv("PORT")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_SECRET", "dev-secret")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("FB_APP_ID", "")
	v.SetDefault("FB_APP_SECRET", "")
	v.SetDefault("BRIDGE_BASE_URL", "")
	v.SetDefault("GRAPH_BASE_URL", DefaultGraphBaseURL)
	v.SetDefault("OAUTH_DIALOG_URL", DefaultOAuthDialogURL)
	v.SetDefault("TOKEN_TIMEOUT", 30*time.Second)
	v.SetDefault("PAGE_TIMEOUT", 60*time.Second)
	v.SetDefault("HANDOFF_BACKEND", "memory")
	v.SetDefault("HANDOFF_TTL", 15*time.Minute)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_HANDOFF_DB", 0)
}

// Load builds a Config from an optional config.yaml and the environment.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	// Most PaaS hosts inject PORT rather than APP_PORT.
	if cfg.AppPort == "" {
		cfg.AppPort = v.GetString("PORT")
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	cfg.BridgeBaseURL = strings.TrimRight(strings.TrimSpace(cfg.BridgeBaseURL), "/")
	return cfg, nil
}

func LoadConfig() {
	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Missing lists the required keys that are unset. The service still starts
// without them so /health stays reachable.
func (c Config) Missing() []string {
	var missing []string
	if c.FBAppID == "" {
		missing = append(missing, "FB_APP_ID")
	}
	if c.FBAppSecret == "" {
		missing = append(missing, "FB_APP_SECRET")
	}
	if c.BridgeBaseURL == "" {
		missing = append(missing, "BRIDGE_BASE_URL")
	}
	return missing
}

// CallbackURL is the fixed redirect_uri registered with the Facebook app.
func (c Config) CallbackURL() string {
	return c.BridgeBaseURL + "/oauth/callback"
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
