package cass

import (
	"flag"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/flagext"
	dslog "github.com/grafana/dskit/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/grafana/cassbridge/pkg/driver"
	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

// ConfigFileEnv names the environment variable holding the path of a YAML
// file with cluster defaults.
const ConfigFileEnv = "CASSBRIDGE_CONFIG_FILE"

// Config holds the defaults every new cluster starts from.
type Config struct {
	Port              int           `yaml:"port"`
	ProtocolVersion   int           `yaml:"protocol_version"`
	Consistency       string        `yaml:"consistency"`
	SerialConsistency string        `yaml:"serial_consistency"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	TCPNoDelay        bool          `yaml:"tcp_nodelay"`
	TCPKeepalive      bool          `yaml:"tcp_keepalive"`
	TCPKeepaliveDelay time.Duration `yaml:"tcp_keepalive_delay"`
	Compression       string        `yaml:"compression"`

	FetchSchema             bool          `yaml:"fetch_schema"`
	MaxSchemaWait           time.Duration `yaml:"max_schema_wait"`
	SchemaAgreementInterval time.Duration `yaml:"schema_agreement_interval"`

	PreparedCacheSize int `yaml:"prepared_cache_size"`

	LogLevel dslog.Level `yaml:"log_level"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&cfg.Port, "cassandra.port", 9042, "Port that Cassandra is running on.")
	f.IntVar(&cfg.ProtocolVersion, "cassandra.protocol-version", 4, "Native protocol version.")
	f.StringVar(&cfg.Consistency, "cassandra.consistency", "LOCAL_ONE", "Default consistency level.")
	f.StringVar(&cfg.SerialConsistency, "cassandra.serial-consistency", "", "Default serial consistency level, SERIAL or LOCAL_SERIAL. Empty leaves it to the server.")
	f.DurationVar(&cfg.ConnectTimeout, "cassandra.connect-timeout", 5*time.Second, "Timeout when connecting to Cassandra.")
	f.DurationVar(&cfg.RequestTimeout, "cassandra.request-timeout", 12*time.Second, "Timeout of a request. 0 disables it.")
	f.DurationVar(&cfg.HeartbeatInterval, "cassandra.heartbeat-interval", 30*time.Second, "Interval between connection heartbeats. 0 disables them.")
	f.DurationVar(&cfg.IdleTimeout, "cassandra.idle-timeout", 60*time.Second, "Close connections without traffic after this long. 0 disables it.")
	f.BoolVar(&cfg.TCPNoDelay, "cassandra.tcp-nodelay", true, "Disable Nagle's algorithm on connections.")
	f.BoolVar(&cfg.TCPKeepalive, "cassandra.tcp-keepalive", false, "Enable TCP keepalive on connections.")
	f.DurationVar(&cfg.TCPKeepaliveDelay, "cassandra.tcp-keepalive-delay", 0, "Initial delay of TCP keepalive probes.")
	f.StringVar(&cfg.Compression, "cassandra.compression", "none", "Frame compression: none, snappy or lz4.")
	f.BoolVar(&cfg.FetchSchema, "cassandra.fetch-schema", true, "Make schema metadata available to sessions.")
	f.DurationVar(&cfg.MaxSchemaWait, "cassandra.max-schema-wait", 10*time.Second, "Maximum time to wait for schema agreement after a schema change.")
	f.DurationVar(&cfg.SchemaAgreementInterval, "cassandra.schema-agreement-interval", 200*time.Millisecond, "Interval between schema agreement checks.")
	f.IntVar(&cfg.PreparedCacheSize, "cassandra.prepared-cache-size", 1000, "Number of prepared statements cached per session. 0 disables the cache.")
	cfg.LogLevel.RegisterFlags(f)
}

// Validate checks the string options.
func (cfg *Config) Validate() error {
	if cfg.Port <= 0 {
		return errors.Errorf("invalid port %d", cfg.Port)
	}
	if _, ok := driver.ParseConsistency(strings.ToUpper(cfg.Consistency)); !ok {
		return errors.Errorf("invalid consistency %q", cfg.Consistency)
	}
	if cfg.SerialConsistency != "" {
		c, ok := driver.ParseConsistency(strings.ToUpper(cfg.SerialConsistency))
		if !ok || !c.IsSerial() {
			return errors.Errorf("invalid serial consistency %q", cfg.SerialConsistency)
		}
	}
	if _, err := parseCompression(cfg.Compression); err != nil {
		return err
	}
	if cfg.PreparedCacheSize < 0 {
		return errors.Errorf("invalid prepared cache size %d", cfg.PreparedCacheSize)
	}
	return nil
}

func parseCompression(s string) (driver.Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return driver.CompressionNone, nil
	case "snappy":
		return driver.CompressionSnappy, nil
	case "lz4":
		return driver.CompressionLZ4, nil
	default:
		return driver.CompressionNone, errors.Errorf("invalid compression %q", s)
	}
}

// LoadConfig returns the flag defaults, overridden by the YAML file at
// path when path is not empty.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	flagext.DefaultValues(&cfg)
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config file")
	}
	if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

var (
	defaultsOnce sync.Once
	defaults     Config
)

// Defaults returns the process defaults, loaded once from the file named by
// CASSBRIDGE_CONFIG_FILE. A broken file is logged and ignored.
func Defaults() Config {
	defaultsOnce.Do(func() {
		path := os.Getenv(ConfigFileEnv)
		cfg, err := LoadConfig(path)
		if err != nil {
			level.Warn(util_log.Logger).Log("msg", "ignoring config file", "path", path, "err", err)
			cfg, _ = LoadConfig("")
		} else if path != "" {
			util_log.SetLevel(cfg.LogLevel)
		}
		defaults = cfg
	})
	return defaults
}

// clusterConfig converts the defaults into a driver configuration.
func (cfg Config) clusterConfig() driver.ClusterConfig {
	consistency, ok := driver.ParseConsistency(strings.ToUpper(cfg.Consistency))
	if !ok {
		consistency = driver.LocalOne
	}
	serial := driver.ConsistencyUnset
	if c, ok := driver.ParseConsistency(strings.ToUpper(cfg.SerialConsistency)); ok && c.IsSerial() {
		serial = c
	}
	compression, _ := parseCompression(cfg.Compression)

	return driver.ClusterConfig{
		Port:              cfg.Port,
		ProtocolVersion:   cfg.ProtocolVersion,
		Compression:       compression,
		ConnectTimeout:    cfg.ConnectTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		IdleTimeout:       cfg.IdleTimeout,
		TCPNoDelay:        cfg.TCPNoDelay,
		TCPKeepalive:      cfg.TCPKeepalive,
		TCPKeepaliveDelay: cfg.TCPKeepaliveDelay,
		DefaultProfile: driver.Profile{
			Consistency:       consistency,
			SerialConsistency: serial,
			RequestTimeout:    cfg.RequestTimeout,
			LoadBalancing: &driver.LoadBalancing{
				Kind:       driver.DCAware,
				TokenAware: true,
			},
		},
		FetchSchema:             cfg.FetchSchema,
		MaxSchemaWait:           cfg.MaxSchemaWait,
		SchemaAgreementInterval: cfg.SchemaAgreementInterval,
	}
}
