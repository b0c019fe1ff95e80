package cli

import (
	"time"

	"github.com/spf13/cobra"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/config"
)

// ConnectionFlags holds the flag values shared by every command that
// talks to the control plane. Flags left empty fall back to the
// CONFLUENT_API_* environment, then to config.yaml under the
// configuration directory, and then to defaults.
type ConnectionFlags struct {
	// Endpoint overrides the control-plane base URL.
	Endpoint string
	// APIKey and APISecret are the cloud credentials.
	APIKey    string
	APISecret string
	// Timeout bounds each request, in seconds.
	Timeout int
	// Retries is the attempt budget for rate-limited requests.
	Retries int
	// ConfigPath is the directory holding config.yaml.
	ConfigPath string
}

// RegisterConnectionFlags registers the shared connection flags on a
// command. Keeping registration in one place keeps naming and help text
// consistent across commands.
func RegisterConnectionFlags(cmd *cobra.Command, flags *ConnectionFlags) {
	cmd.PersistentFlags().StringVar(&flags.Endpoint, "endpoint", "", "Confluent Cloud API endpoint (env: CONFLUENT_API_ENDPOINT)")
	cmd.PersistentFlags().StringVar(&flags.APIKey, "api-key", "", "Cloud API key (env: CONFLUENT_API_KEY)")
	cmd.PersistentFlags().StringVar(&flags.APISecret, "api-secret", "", "Cloud API secret (env: CONFLUENT_API_SECRET)")
	cmd.PersistentFlags().IntVar(&flags.Timeout, "timeout", 0, "Request timeout in seconds (env: CONFLUENT_API_TIMEOUT)")
	cmd.PersistentFlags().IntVar(&flags.Retries, "retries", 0, "Attempts for rate-limited requests (env: CONFLUENT_API_RETRIES)")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}

// Client builds the control-plane client from the flags, the
// environment, the configuration file and the defaults, in that order
// of precedence.
func (f *ConnectionFlags) Client(version string) (*ccloud.Client, error) {
	opts := ccloud.Options{
		Endpoint:  f.Endpoint,
		APIKey:    f.APIKey,
		APISecret: f.APISecret,
		UserAgent: "ccloudctl/" + version,
	}
	if f.Timeout > 0 {
		opts.Timeout = time.Duration(f.Timeout) * time.Second
	}
	if f.Retries > 0 {
		opts.Retries = f.Retries
	}
	opts, err := f.fillFromConfigFile(opts.FromEnv())
	if err != nil {
		return nil, err
	}
	return ccloud.NewClient(opts)
}

// fillFromConfigFile completes settings still unset after flags and
// environment from config.yaml. A missing file leaves the options
// untouched.
func (f *ConnectionFlags) fillFromConfigFile(opts ccloud.Options) (ccloud.Options, error) {
	if f.ConfigPath == "" {
		return opts, nil
	}
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return ccloud.Options{}, err
	}
	if opts.Endpoint == "" {
		opts.Endpoint = cfg.Endpoint
	}
	if opts.APIKey == "" {
		opts.APIKey = cfg.APIKey
	}
	if opts.APISecret == "" {
		opts.APISecret = cfg.APISecret
	}
	if opts.Timeout == 0 && cfg.Timeout > 0 {
		opts.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	if opts.Retries == 0 && cfg.Retries > 0 {
		opts.Retries = cfg.Retries
	}
	return opts, nil
}
