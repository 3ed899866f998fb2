package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AuthModeYouTube = "youtube"
	AuthModeOIDC    = "oidc"
	AuthModeNone    = "none"

	BindingModeAdvisory = "advisory"
	BindingModeRegistry = "registry"
	BindingModePolicy   = "policy"

	BindingStoreMemory   = "memory"
	BindingStorePostgres = "postgres"
	BindingStoreRedis    = "redis"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	AuthMode               string `yaml:"auth_mode"`
	IdentityProviderURL    string `yaml:"identity_provider_url"`
	IdentityTimeoutSeconds int    `yaml:"identity_timeout_seconds"`
	OIDCIssuerURL          string `yaml:"oidc_issuer_url"`
	OIDCAudience           string `yaml:"oidc_audience"`
	OIDCJWKSURL            string `yaml:"oidc_jwks_url"`
	OIDCClockSkewSecs      int    `yaml:"oidc_clock_skew_seconds"`

	// SigningPrivateKeyHex is never read from the config file.
	SigningPrivateKeyHex string            `yaml:"-"`
	SigningKeyFile       string            `yaml:"signing_key_file"`
	SigningSemantics     string            `yaml:"signing_semantics"`
	SemanticsByKind      map[string]string `yaml:"semantics_by_kind"`

	VaultAddr           string `yaml:"vault_addr"`
	VaultToken          string `yaml:"-"`
	VaultSigningKeyPath string `yaml:"vault_signing_key_path"`
	// VaultSigningKeyVersion pins a KV v2 version; 0 reads the current one.
	VaultSigningKeyVersion int `yaml:"vault_signing_key_version"`

	AWSRegion                 string `yaml:"aws_region"`
	AWSAccessKeyID            string `yaml:"-"`
	AWSSecretAccessKey        string `yaml:"-"`
	AWSSessionToken           string `yaml:"-"`
	AWSSecretsManagerEndpoint string `yaml:"aws_secrets_manager_endpoint"`
	AWSSigningKeySecretID     string `yaml:"aws_signing_key_secret_id"`
	AWSSigningKeyVersionStage string `yaml:"aws_signing_key_version_stage"`

	GCPProjectID             string `yaml:"gcp_project_id"`
	GCPAccessToken           string `yaml:"-"`
	GCPSecretManagerEndpoint string `yaml:"gcp_secret_manager_endpoint"`
	GCPSigningKeySecretID    string `yaml:"gcp_signing_key_secret_id"`

	BindingMode       string `yaml:"binding_mode"`
	BindingStore      string `yaml:"binding_store"`
	Bindings          string `yaml:"bindings"`
	BindingPolicyPath string `yaml:"binding_policy_path"`

	PostgresDSN    string `yaml:"-"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"-"`
	RedisDB        int    `yaml:"redis_db"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`
}

func defaults() Config {
	return Config{
		HTTPAddr:               ":5000",
		LogLevel:               "info",
		IdentityProviderURL:    "https://www.googleapis.com",
		IdentityTimeoutSeconds: 5,
		OIDCClockSkewSecs:      60,
		SigningSemantics:       "personal",
		BindingMode:            BindingModeAdvisory,
		BindingStore:           BindingStoreMemory,
		RedisKeyPrefix:         "revix:binding:",
	}
}

// FromEnv builds the config from process environment only.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// Load reads the YAML file named by CONFIG_FILE, if any, then applies the
// environment on top. A set environment variable always wins over the file.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(filepath.Clean(path), &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.AuthMode, "AUTH_MODE")
	setString(&cfg.IdentityProviderURL, "IDENTITY_PROVIDER_URL")
	cfg.IdentityTimeoutSeconds = envIntDefault("IDENTITY_TIMEOUT_SECONDS", cfg.IdentityTimeoutSeconds)
	setString(&cfg.OIDCIssuerURL, "OIDC_ISSUER_URL")
	setString(&cfg.OIDCAudience, "OIDC_AUDIENCE")
	setString(&cfg.OIDCJWKSURL, "OIDC_JWKS_URL")
	cfg.OIDCClockSkewSecs = envIntDefault("OIDC_CLOCK_SKEW_SECONDS", cfg.OIDCClockSkewSecs)

	setString(&cfg.SigningPrivateKeyHex, "SIGNING_PRIVATE_KEY_HEX")
	setString(&cfg.SigningPrivateKeyHex, "PRIVATE_KEY")
	setString(&cfg.SigningKeyFile, "SIGNING_KEY_FILE")
	setString(&cfg.SigningSemantics, "SIGNING_SEMANTICS")
	for _, kind := range []string{"account_ownership", "content_ownership", "royalty_transfer"} {
		if v := os.Getenv("SIGNING_SEMANTICS_" + strings.ToUpper(kind)); v != "" {
			if cfg.SemanticsByKind == nil {
				cfg.SemanticsByKind = make(map[string]string)
			}
			cfg.SemanticsByKind[kind] = v
		}
	}

	setString(&cfg.VaultAddr, "VAULT_ADDR")
	setString(&cfg.VaultToken, "VAULT_TOKEN")
	setString(&cfg.VaultSigningKeyPath, "VAULT_SIGNING_KEY_PATH")
	cfg.VaultSigningKeyVersion = envIntDefault("VAULT_SIGNING_KEY_VERSION", cfg.VaultSigningKeyVersion)

	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.AWSAccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&cfg.AWSSecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setString(&cfg.AWSSessionToken, "AWS_SESSION_TOKEN")
	setString(&cfg.AWSSecretsManagerEndpoint, "AWS_SECRETS_MANAGER_ENDPOINT")
	setString(&cfg.AWSSigningKeySecretID, "AWS_SIGNING_KEY_SECRET_ID")
	setString(&cfg.AWSSigningKeyVersionStage, "AWS_SIGNING_KEY_VERSION_STAGE")

	setString(&cfg.GCPProjectID, "GCP_PROJECT_ID")
	setString(&cfg.GCPAccessToken, "GCP_ACCESS_TOKEN")
	setString(&cfg.GCPSecretManagerEndpoint, "GCP_SECRET_MANAGER_ENDPOINT")
	setString(&cfg.GCPSigningKeySecretID, "GCP_SIGNING_KEY_SECRET_ID")

	setString(&cfg.BindingMode, "BINDING_MODE")
	setString(&cfg.BindingStore, "BINDING_STORE")
	setString(&cfg.Bindings, "BINDINGS")
	setString(&cfg.BindingPolicyPath, "BINDING_POLICY_PATH")

	setString(&cfg.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	cfg.RedisDB = envIntDefault("REDIS_DB", cfg.RedisDB)
	setString(&cfg.RedisKeyPrefix, "REDIS_KEY_PREFIX")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func (c Config) IdentityTimeout() time.Duration {
	if c.IdentityTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.IdentityTimeoutSeconds) * time.Second
}

func (c Config) OIDCClockSkew() time.Duration {
	return time.Duration(c.OIDCClockSkewSecs) * time.Second
}
