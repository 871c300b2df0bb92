package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/charlesng35/sftpctl/internal/app"
	sshdriver "github.com/charlesng35/sftpctl/internal/drivers/ssh"
	"github.com/charlesng35/sftpctl/internal/session"
	isftp "github.com/charlesng35/sftpctl/internal/sftp"
	"github.com/charlesng35/sftpctl/pkg/logger"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cli carries what the subcommands share: the viper instance flags are bound
// to, the local filesystem and the engine constructor.
type cli struct {
	v          *viper.Viper
	fs         afero.Fs
	newEngine  func(sshdriver.Config) isftp.Engine
	configPath string
	cfg        *app.Config
}

func newCLI() *cli {
	return &cli{
		v:  viper.NewWithOptions(viper.ExperimentalBindStruct()),
		fs: afero.NewOsFs(),
		newEngine: func(cfg sshdriver.Config) isftp.Engine {
			return sshdriver.NewDriver(cfg)
		},
	}
}

// flagBindings maps persistent flags to configuration keys.
var flagBindings = map[string]string{
	"host":            "session.host",
	"port":            "session.port",
	"user":            "session.username",
	"password":        "session.password",
	"key":             "session.private_key_path",
	"passphrase":      "session.passphrase",
	"known-hosts":     "session.known_hosts_path",
	"strict-host-key": "session.strict_host_key",
	"agent":           "session.use_agent",
	"timeout":         "session.timeout",
	"log-level":       "log_level",
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "sftpctl",
		Short:         "List, upload and download files over SFTP",
		Long:          "Opens an authenticated SFTP session for each command, runs it and closes the session again.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync() // best effort
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to configuration directory or file")
	flags.String("host", "", "SFTP server host name or IP")
	flags.Int("port", 22, "SFTP server port")
	flags.StringP("user", "u", "", "SSH username")
	flags.String("password", "", "SSH password (or set SFTPCTL_SESSION_PASSWORD)")
	flags.String("key", "", "Path to SSH private key (PEM, OpenSSH)")
	flags.String("passphrase", "", "Private key passphrase (or set SFTPCTL_SESSION_PASSPHRASE)")
	flags.String("known-hosts", "", "Path to known_hosts file")
	flags.Bool("strict-host-key", false, "Require host key verification against known_hosts")
	flags.Bool("agent", false, "Offer keys from the running ssh-agent")
	flags.Duration("timeout", 10*time.Second, "Connection timeout")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	for flag, key := range flagBindings {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(newListCommand(c), newPutCommand(c), newGetCommand(c))
	return root
}

func (c *cli) loadConfig() error {
	cfg, err := c.readConfig()
	if err != nil {
		return err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Debug("applied runtime default", zap.String("key", key))
	}

	c.cfg = cfg
	return nil
}

func (c *cli) readConfig() (*app.Config, error) {
	path := strings.TrimSpace(c.configPath)
	if path == "" {
		return app.LoadConfigWith(c.v)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if info.IsDir() {
		return app.LoadConfigWith(c.v, path)
	}
	c.v.SetConfigFile(path)
	return app.LoadConfigWith(c.v)
}

// newClient builds a disconnected session client from the loaded
// configuration.
func (c *cli) newClient() (*session.Client, error) {
	if c.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	clientCfg, err := c.cfg.Session.ClientConfig(c.fs)
	if err != nil {
		return nil, err
	}

	engine := c.newEngine(c.cfg.Session.DriverConfig(c.fs))
	return session.New(clientCfg, engine,
		session.WithLogger(logger.WithModule("session")),
		session.WithFs(c.fs),
	)
}
