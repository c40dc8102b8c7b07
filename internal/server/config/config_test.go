package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.PortalURL, "https://central.sonatype.com")
	assert.Equal(t, c.UserServiceURL, "http://127.0.0.1:8081")
	assert.Equal(t, c.JWTPublicKeyFile, "jwt_public_key.pem")
	assert.Equal(t, c.JWTIssuer, "user-service")
	assert.Equal(t, c.JWTAudience, "ossrh-proxy")
	assert.Equal(t, c.StagingBackend, "local")
	assert.Equal(t, c.StagingRoot, "")
	assert.Equal(t, c.ShutdownTimeout, 5*time.Second)
	assert.Equal(t, c.S3AccessKey, "admin")
	assert.Equal(t, c.S3SecretKey, "secretpassword")
	assert.Equal(t, c.S3Bucket, "staging")
	assert.Equal(t, c.S3Region, "us-east-1")
	assert.Equal(t, c.S3BaseEndpoint, "http://127.0.0.1:9000/")
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddr, ":8080")
	assert.Equal(t, c.PortalURL, "https://central.sonatype.com")
	assert.Equal(t, c.UserServiceURL, "http://127.0.0.1:8081")
	assert.Equal(t, c.JWTIssuer, "user-service")
	assert.Equal(t, c.JWTAudience, "ossrh-proxy")
	assert.Equal(t, c.StagingBackend, "local")
	assert.Equal(t, c.ShutdownTimeout, 5*time.Second)
	assert.Equal(t, c.S3Bucket, "staging")
	assert.Equal(t, c.S3Region, "us-east-1")
}
