package common

import (
	"fmt"
	"os"
	"time"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/util"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

type Config struct {
	AgencyAPIKey            string
	AgencyMaxRetries        int
	AgencySimulator         bool
	AgencyURL               string
	BackendAPIKey           string
	BackendURL              string
	BaseWorkingDir          string
	ConfigName              string
	ConnectivityBackoffBase time.Duration
	ConnectivityMaxAttempts int
	LogDir                  string
	LogLevel                logging.Level
	NsqLookupd              string
	NsqURL                  string
	PhotoBucket             string
	PidFileDir              string
	ProbeURL                string
	RedisDefaultDB          int
	RedisPassword           string
	RedisURL                string
	S3Credentials           map[string]S3Credentials
	SessionServiceURL       string
	WebhookMaxAttempts      int
	WebhookURL              string
}

type S3Credentials struct {
	Host      string
	KeyID     string
	SecretKey string
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// Returns a new config based on ENV var HARVEST_ENV
func NewConfig() *Config {
	config := loadConfig()
	config.expandPaths()
	config.applyDefaults()
	config.makeDirs()
	return config
}

func loadConfig() *Config {
	configDir, envName := getEnvVars()
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return &Config{
		AgencyAPIKey:            v.GetString("AGENCY_API_KEY"),
		AgencyMaxRetries:        v.GetInt("AGENCY_MAX_RETRY_ATTEMPTS"),
		AgencySimulator:         v.GetBool("AGENCY_SIMULATOR"),
		AgencyURL:               v.GetString("AGENCY_URL"),
		BackendAPIKey:           v.GetString("BACKEND_API_KEY"),
		BackendURL:              v.GetString("BACKEND_URL"),
		BaseWorkingDir:          v.GetString("BASE_WORKING_DIR"),
		ConfigName:              envName,
		ConnectivityBackoffBase: v.GetDuration("CONNECTIVITY_BACKOFF_BASE"),
		ConnectivityMaxAttempts: v.GetInt("CONNECTIVITY_MAX_ATTEMPTS"),
		LogDir:                  v.GetString("LOG_DIR"),
		LogLevel:                logLevels[v.GetString("LOG_LEVEL")],
		NsqLookupd:              v.GetString("NSQ_LOOKUPD"),
		NsqURL:                  v.GetString("NSQ_URL"),
		PhotoBucket:             v.GetString("PHOTO_BUCKET"),
		PidFileDir:              v.GetString("PID_FILE_DIR"),
		ProbeURL:                v.GetString("PROBE_URL"),
		RedisDefaultDB:          v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisURL:                v.GetString("REDIS_URL"),
		S3Credentials: map[string]S3Credentials{
			constants.StorageProviderAWS: {
				Host:      v.GetString("S3_AWS_HOST"),
				KeyID:     v.GetString("S3_AWS_KEY"),
				SecretKey: v.GetString("S3_AWS_SECRET"),
			},
			constants.StorageProviderLocal: {
				Host:      v.GetString("S3_LOCAL_HOST"),
				KeyID:     v.GetString("S3_LOCAL_KEY"),
				SecretKey: v.GetString("S3_LOCAL_SECRET"),
			},
		},
		SessionServiceURL:  v.GetString("SESSION_SERVICE_URL"),
		WebhookMaxAttempts: v.GetInt("WEBHOOK_MAX_ATTEMPTS"),
		WebhookURL:         v.GetString("WEBHOOK_URL"),
	}
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("HARVEST_CONFIG_DIR")
	envName := getRequiredEnvVar("HARVEST_ENV")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() {
	c.BaseWorkingDir = expandPath(c.BaseWorkingDir)
	c.LogDir = expandPath(c.LogDir)
	c.PidFileDir = expandPath(c.PidFileDir)
}

func expandPath(dirName string) string {
	dir, err := util.ExpandTilde(dirName)
	if err != nil {
		panic(err)
	}
	return dir
}

// Retry ceilings and backoff settings have sane defaults so a minimal
// .env file still produces a working engine.
func (c *Config) applyDefaults() {
	if c.AgencyMaxRetries == 0 {
		c.AgencyMaxRetries = constants.DefaultAgencyMaxRetries
	}
	if c.ConnectivityMaxAttempts == 0 {
		c.ConnectivityMaxAttempts = constants.ConnectivityMaxAttempts
	}
	if c.ConnectivityBackoffBase == 0 {
		c.ConnectivityBackoffBase = constants.ConnectivityBackoffBase
	}
	if c.WebhookMaxAttempts == 0 {
		c.WebhookMaxAttempts = constants.DefaultWebhookMaxAttempts
	}
}

func (c *Config) makeDirs() error {
	dirs := []string{
		c.BaseWorkingDir,
		c.LogDir,
		c.PidFileDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			panic(err)
		}
	}
	return nil
}
