package common

import (
	"fmt"

	"github.com/CatchLog/harvest-services/network"
	"github.com/CatchLog/harvest-services/util/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// Context bundles the config, logger and remote-service clients that
// every component of the submission engine works through.
type Context struct {
	Config        *Config
	Logger        *logging.Logger
	AgencyClient  *network.AgencyClient
	BackendClient *network.BackendClient
	NSQClient     *network.NSQClient
	Probe         network.ConnectivityProbe
	SessionClient *network.SessionClient
	StateClient   *network.StateClient
	S3Clients     map[string]*minio.Client
}

func NewContext() *Context {
	config := NewConfig()
	_logger := getLogger(config)
	return &Context{
		Config:        config,
		Logger:        _logger,
		AgencyClient:  getAgencyClient(config, _logger),
		BackendClient: getBackendClient(config, _logger),
		NSQClient:     network.NewNSQClient(config.NsqURL),
		Probe:         network.NewHTTPProbe(config.ProbeURL),
		SessionClient: network.NewSessionClient(config.SessionServiceURL),
		StateClient:   getStateClient(config),
		S3Clients:     getS3Clients(config),
	}
}

func getLogger(config *Config) *logging.Logger {
	logger, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return logger
}

func getStateClient(config *Config) *network.StateClient {
	return network.NewStateClient(
		config.RedisURL,
		config.RedisPassword,
		config.RedisDefaultDB)
}

func getAgencyClient(config *Config, logger *logging.Logger) *network.AgencyClient {
	client, err := network.NewAgencyClient(
		config.AgencyURL,
		config.AgencyAPIKey,
		logger)
	if err != nil {
		msg := fmt.Sprintf("Could not initialize agency client: %v", err)
		panic(msg)
	}
	return client
}

func getBackendClient(config *Config, logger *logging.Logger) *network.BackendClient {
	client, err := network.NewBackendClient(
		config.BackendURL,
		config.BackendAPIKey,
		logger)
	if err != nil {
		msg := fmt.Sprintf("Could not initialize backend client: %v", err)
		panic(msg)
	}
	return client
}

func getS3Clients(config *Config) map[string]*minio.Client {
	s3Clients := make(map[string]*minio.Client, len(config.S3Credentials))
	useSSL := true
	if config.ConfigName == "dev" || config.ConfigName == "test" {
		useSSL = false // talking to localhost in dev and test
	}
	for provider, creds := range config.S3Credentials {
		client, err := minio.New(
			creds.Host,
			&minio.Options{
				Creds:  credentials.NewStaticV4(creds.KeyID, creds.SecretKey, ""),
				Secure: useSSL,
			})
		if err != nil {
			panic(err)
		}
		s3Clients[provider] = client
	}
	return s3Clients
}
