// Package config handles configuration for the gateway server, including
// defaults, a JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the staging gateway.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - PortalURL: base URL of the bundle upload portal.
//   - UserServiceURL: base URL of the user service that exchanges legacy
//     credentials for signed assertions.
//   - JWTPublicKeyFile: PEM file with the RSA public key used to verify
//     assertions.
//   - JWTIssuer / JWTAudience: exact issuer and audience an assertion must
//     carry.
//   - StagingBackend: "local" or "s3".
//   - StagingRoot: directory for the local backend; a temporary directory is
//     created when empty.
//   - ShutdownTimeout: how long to drain in-flight requests on shutdown.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings for the s3 backend.
type Config struct {
	EndpointAddr     string
	PortalURL        string
	UserServiceURL   string
	JWTPublicKeyFile string
	JWTIssuer        string
	JWTAudience      string
	StagingBackend   string
	StagingRoot      string
	ShutdownTimeout  time.Duration
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values should be overridden for production.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.PortalURL = "https://central.sonatype.com"
	c.UserServiceURL = "http://127.0.0.1:8081"
	c.JWTPublicKeyFile = "jwt_public_key.pem"
	c.JWTIssuer = "user-service"
	c.JWTAudience = "ossrh-proxy"
	c.StagingBackend = "local"
	c.StagingRoot = ""
	c.ShutdownTimeout = 5 * time.Second
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "staging"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
