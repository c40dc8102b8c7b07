// Package upload implements the bundle upload command line tool. It sends a
// prebuilt bundle straight to the portal, bypassing the staging protocol.
package upload

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stagebridge/stagebridge/internal/logging"
	"github.com/stagebridge/stagebridge/internal/server/auth"
	"github.com/stagebridge/stagebridge/internal/server/portal"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// Options collects everything the upload needs.
type Options struct {
	PortalURL      string
	Username       string
	Password       string
	DeploymentName string
	PublishingType string
	BundlePath     string
}

// ParseFlags reads Options from the given argument list. The password is not
// a flag; it is prompted for separately.
func ParseFlags(args []string) (*Options, error) {
	opts := &Options{}

	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.StringVar(&opts.PortalURL, "portal", "https://central.sonatype.com", "portal base URL")
	fs.StringVar(&opts.Username, "user", "", "portal username")
	fs.StringVar(&opts.DeploymentName, "name", "", "deployment name")
	fs.StringVar(&opts.PublishingType, "type", "user_managed", "publishing type (automatic or user_managed)")
	fs.StringVar(&opts.BundlePath, "bundle", "", "path to the bundle zip")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Username == "" {
		return nil, fmt.Errorf("missing required flag: -user")
	}
	if opts.BundlePath == "" {
		return nil, fmt.Errorf("missing required flag: -bundle")
	}
	if opts.DeploymentName == "" {
		opts.DeploymentName = opts.BundlePath
	}
	return opts, nil
}

// PromptPassword reads the password from the terminal without echo.
func PromptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pw)), nil
}

// Run reads the bundle and uploads it with the legacy token credential,
// printing the deployment id on success.
func Run(ctx context.Context, opts *Options, out io.Writer, log logging.Logger) error {
	bundle, err := os.ReadFile(opts.BundlePath)
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}

	creds := auth.CredentialsFromUserToken(auth.NewUserToken(opts.Username, opts.Password))
	client := portal.NewClient(opts.PortalURL, log)

	deploymentID, err := client.Upload(ctx, creds, opts.DeploymentName, portal.ParsePublishingType(opts.PublishingType), bundle)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, deploymentID)
	return nil
}
