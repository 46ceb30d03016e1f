package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/flagx"
	"github.com/dmitrijs2005/dogspotter/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	TelegramToken      string         `json:"telegram_token"`
	Workers            int            `json:"workers"`
	BlobBackend        string         `json:"blob_backend"`
	ImagesDir          string         `json:"images_dir"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	DetectorURL        string         `json:"detector_url"`
	DetectorTimeout    timex.Duration `json:"detector_timeout"`
	Model              string         `json:"model"`
	TargetClass        int            `json:"target_class"`
	MinConfidence      float64        `json:"min_confidence"`
	MinVolume          int64          `json:"min_volume"`
	MaxNegativePercent float64        `json:"max_negative_percent"`
	LogLevel           string         `json:"log_level"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The path comes from the -c / -config flags, or from DOGSPOTTER_CONFIG when
// no flag is given. Keys missing from the file keep their current values.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFile(common.EnvConfigFile)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	fromJson(config, c)
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:   config.EndpointAddrGRPC,
		EndpointAddrHTTP:   config.EndpointAddrHTTP,
		DatabaseDSN:        config.DatabaseDSN,
		TelegramToken:      config.TelegramToken,
		Workers:            config.Workers,
		BlobBackend:        config.BlobBackend,
		ImagesDir:          config.ImagesDir,
		S3RootUser:         config.S3RootUser,
		S3RootPassword:     config.S3RootPassword,
		S3Bucket:           config.S3Bucket,
		S3Region:           config.S3Region,
		S3BaseEndpoint:     config.S3BaseEndpoint,
		DetectorURL:        config.DetectorURL,
		DetectorTimeout:    timex.Duration{Duration: config.DetectorTimeout},
		Model:              config.Model,
		TargetClass:        config.TargetClass,
		MinConfidence:      config.MinConfidence,
		MinVolume:          config.MinVolume,
		MaxNegativePercent: config.MaxNegativePercent,
		LogLevel:           config.LogLevel,
		ShutdownTimeout:    timex.Duration{Duration: config.ShutdownTimeout},
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.TelegramToken = c.TelegramToken
	config.Workers = c.Workers
	config.BlobBackend = c.BlobBackend
	config.ImagesDir = c.ImagesDir
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.DetectorURL = c.DetectorURL
	config.DetectorTimeout = c.DetectorTimeout.Duration
	config.Model = c.Model
	config.TargetClass = c.TargetClass
	config.MinConfidence = c.MinConfidence
	config.MinVolume = c.MinVolume
	config.MaxNegativePercent = c.MaxNegativePercent
	config.LogLevel = c.LogLevel
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
}
