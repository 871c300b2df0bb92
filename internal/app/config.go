package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	sshdriver "github.com/charlesng35/sftpctl/internal/drivers/ssh"
	"github.com/charlesng35/sftpctl/internal/session"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "SFTPCTL"

// Config represents the runtime configuration for sftpctl.
type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Session   SessionConfig `mapstructure:"session"`
}

// SessionConfig describes the remote endpoint and how to authenticate to it.
type SessionConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	Passphrase     string        `mapstructure:"passphrase"`
	KnownHostsPath string        `mapstructure:"known_hosts_path"`
	StrictHostKey  bool          `mapstructure:"strict_host_key"`
	UseAgent       bool          `mapstructure:"use_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxPacket      int           `mapstructure:"max_packet"`
}

// LoadConfig reads configuration from config.yaml (searched in ./config and
// paths), SFTPCTL_* environment variables and defaults.
func LoadConfig(paths ...string) (*Config, error) {
	return LoadConfigWith(viper.NewWithOptions(viper.ExperimentalBindStruct()), paths...)
}

// LoadConfigWith is LoadConfig on a caller-supplied viper instance, so flags
// bound to v take precedence over env and file values.
func LoadConfigWith(v *viper.Viper, paths ...string) (*Config, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./config")
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("session.host", "")
	v.SetDefault("session.port", 22)
	v.SetDefault("session.username", "")
	v.SetDefault("session.password", "")
	v.SetDefault("session.private_key_path", "")
	v.SetDefault("session.passphrase", "")
	v.SetDefault("session.known_hosts_path", "")
	v.SetDefault("session.strict_host_key", false)
	v.SetDefault("session.use_agent", false)
	v.SetDefault("session.timeout", "10s")
	v.SetDefault("session.max_packet", 32768)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// ClientConfig converts the session settings into the client configuration,
// loading the private key through fs when a path is set.
func (c SessionConfig) ClientConfig(fs afero.Fs) (session.Config, error) {
	cfg := session.Config{
		Hostname:   strings.TrimSpace(c.Host),
		Port:       c.Port,
		Username:   strings.TrimSpace(c.Username),
		Password:   c.Password,
		Passphrase: c.Passphrase,
	}

	if strings.TrimSpace(c.PrivateKeyPath) != "" {
		key, err := ReadPrivateKey(fs, c.PrivateKeyPath)
		if err != nil {
			return session.Config{}, err
		}
		cfg.PrivateKey = key
	}
	return cfg, nil
}

// DriverConfig returns the SSH engine settings.
func (c SessionConfig) DriverConfig(fs afero.Fs) sshdriver.Config {
	return sshdriver.Config{
		Timeout:        c.Timeout,
		KnownHostsPath: c.KnownHostsPath,
		StrictHostKey:  c.StrictHostKey,
		UseAgent:       c.UseAgent,
		MaxPacket:      c.MaxPacket,
		Fs:             fs,
	}
}
