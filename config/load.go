package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/indigo-web/staticd/http/mime"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. STATICD_NET_PORT=8080.
const EnvPrefix = "STATICD"

// FlagKeys maps command-line flag names onto configuration keys.
var FlagKeys = map[string]string{
	"root":                     "root",
	"port":                     "net.port",
	"address":                  "net.address",
	"threads":                  "threads",
	"read-buffer-size":         "net.read_buffer_size",
	"read-timeout":             "net.read_timeout",
	"accept-rate":              "net.accept_rate",
	"case-insensitive-headers": "headers.case_insensitive",
	"log-level":                "logging.level",
	"log-format":               "logging.format",
	"metrics-port":             "metrics.port",
}

// Load builds the configuration from, in order of precedence: explicit overrides,
// changed command-line flags, environment variables, the config file and defaults.
// Empty path means no config file. Flags and overrides may be nil.
func Load(path string, flags *pflag.FlagSet, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	policy, err := decodePolicy(v.GetStringMap("policy"))
	if err != nil {
		return nil, err
	}

	cfg.Policy = policy
	ApplyDefaults(cfg)

	if err = Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("root", d.Root)
	v.SetDefault("threads", d.Threads)
	v.SetDefault("net.address", d.NET.Address)
	v.SetDefault("net.port", d.NET.Port)
	v.SetDefault("net.read_buffer_size", d.NET.ReadBufferSize)
	v.SetDefault("net.write_buffer_size", d.NET.WriteBufferSize)
	v.SetDefault("net.read_timeout", d.NET.ReadTimeout)
	v.SetDefault("net.accept_loop_interrupt_period", d.NET.AcceptLoopInterruptPeriod)
	v.SetDefault("net.accept_rate", d.NET.AcceptRate)
	v.SetDefault("net.accept_burst", d.NET.AcceptBurst)
	v.SetDefault("headers.prealloc", d.Headers.Prealloc)
	v.SetDefault("headers.case_insensitive", d.Headers.CaseInsensitive)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("metrics.port", d.Metrics.Port)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// decodePolicy decodes the free-form policy section. Values coming from the
// environment are strings, therefore the input is decoded weakly typed.
func decodePolicy(raw map[string]any) (map[string]mime.Policy, error) {
	policy := make(map[string]mime.Policy, len(raw))
	if len(raw) == 0 {
		return policy, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &policy,
	})
	if err != nil {
		return nil, err
	}

	if err = decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	for ext := range policy {
		if strings.HasPrefix(ext, ".") {
			return nil, errors.New("policy: extensions must not start with a dot: " + ext)
		}
	}

	return policy, nil
}

// ApplyDefaults fills zero values that must never stay zero.
func ApplyDefaults(cfg *Config) {
	d := Default()

	if cfg.NET.WriteBufferSize == 0 {
		cfg.NET.WriteBufferSize = d.NET.WriteBufferSize
	}

	if cfg.NET.AcceptLoopInterruptPeriod == 0 {
		cfg.NET.AcceptLoopInterruptPeriod = d.NET.AcceptLoopInterruptPeriod
	}

	if cfg.NET.AcceptRate > 0 && cfg.NET.AcceptBurst == 0 {
		cfg.NET.AcceptBurst = max(1, int(cfg.NET.AcceptRate))
	}

	if cfg.Policy == nil {
		cfg.Policy = make(map[string]mime.Policy)
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
}
