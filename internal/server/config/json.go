package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/stagebridge/stagebridge/internal/flagx"
	"github.com/stagebridge/stagebridge/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	PortalURL        string         `json:"portal_url"`
	UserServiceURL   string         `json:"user_service_url"`
	JWTPublicKeyFile string         `json:"jwt_public_key_file"`
	JWTIssuer        string         `json:"jwt_issuer"`
	JWTAudience      string         `json:"jwt_audience"`
	StagingBackend   string         `json:"staging_backend"`
	StagingRoot      string         `json:"staging_root"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.PortalURL = c.PortalURL
	config.UserServiceURL = c.UserServiceURL
	config.JWTPublicKeyFile = c.JWTPublicKeyFile
	config.JWTIssuer = c.JWTIssuer
	config.JWTAudience = c.JWTAudience
	config.StagingBackend = c.StagingBackend
	config.StagingRoot = c.StagingRoot
	config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
