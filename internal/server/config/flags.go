package config

import (
	"flag"
	"os"
	"time"

	"github.com/stagebridge/stagebridge/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-p string   portal base URL
//	-u string   user service base URL
//	-k string   JWT public key PEM file
//	-i string   JWT issuer
//	-d string   JWT audience
//	-b string   staging backend ("local" or "s3")
//	-r string   staging root directory (local backend)
//	-t int      shutdown timeout, seconds
//	-x string   S3 access key
//	-y string   S3 secret key
//	-v string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-u", "-k", "-i", "-d", "-b", "-r", "-t", "-x", "-y", "-v", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.PortalURL, "p", config.PortalURL, "portal base URL")
	fs.StringVar(&config.UserServiceURL, "u", config.UserServiceURL, "user service base URL")
	fs.StringVar(&config.JWTPublicKeyFile, "k", config.JWTPublicKeyFile, "JWT public key PEM file")
	fs.StringVar(&config.JWTIssuer, "i", config.JWTIssuer, "JWT issuer")
	fs.StringVar(&config.JWTAudience, "d", config.JWTAudience, "JWT audience")
	fs.StringVar(&config.StagingBackend, "b", config.StagingBackend, "staging backend (local or s3)")
	fs.StringVar(&config.StagingRoot, "r", config.StagingRoot, "staging root directory")

	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	fs.StringVar(&config.S3AccessKey, "x", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "y", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "v", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
