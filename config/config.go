package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "CANDLE_CONFIG_FILE"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreHDFS     = "hdfs"
)

type cart struct {
	Store       string        `mapstructure:"store"`
	StoreKey    string        `mapstructure:"store_key"`
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

type hdfs struct {
	Addresses []string `mapstructure:"addresses"`
	User      string   `mapstructure:"user"`
	Dir       string   `mapstructure:"dir"`
}

type consumers struct {
	DemandGroup string `mapstructure:"demand_group"`
}

type topics struct {
	CartEvents string `mapstructure:"cart_events"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type broker struct {
	Enabled            bool      `mapstructure:"enabled"`
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                brokerTLS `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

type Config struct {
	LogLevel       string        `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	SQLDB          string        `mapstructure:"sql_db"`
	Currency       string        `mapstructure:"currency"`
	Cart           cart          `mapstructure:"cart"`
	HDFS           hdfs          `mapstructure:"hdfs"`
	Broker         broker        `mapstructure:"broker"`
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the config file at path. Keys missing from the file take
// their defaults, unknown keys are an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("handler_timeout", 5*time.Second)
	v.SetDefault("sql_db", "")
	v.SetDefault("currency", "USD")
	v.SetDefault("cart.store", StoreMemory)
	v.SetDefault("cart.store_key", "candle-cart")
	v.SetDefault("cart.save_timeout", 3*time.Second)
	v.SetDefault("cart.max_sessions", 10_000)
	v.SetDefault("hdfs.addresses", []string{})
	v.SetDefault("hdfs.user", "")
	v.SetDefault("hdfs.dir", "/carts")
	v.SetDefault("broker.enabled", false)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
	v.SetDefault("broker.topics.cart_events", "cart-events")
	v.SetDefault("broker.consumers.demand_group", "cart-demand")
}

func (c Config) validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.Cart.Store {
	case StoreMemory, StorePostgres, StoreHDFS:
	default:
		return fmt.Errorf("cart.store: unknown store %q", c.Cart.Store)
	}

	if c.Cart.MaxSessions <= 0 {
		return fmt.Errorf("cart.max_sessions: must be positive")
	}

	if c.Cart.StoreKey == "" {
		return fmt.Errorf("cart.store_key: required")
	}

	if c.SQLDB == "" {
		return fmt.Errorf("sql_db: required")
	}

	if c.Cart.Store == StoreHDFS && len(c.HDFS.Addresses) == 0 {
		return fmt.Errorf("hdfs.addresses: required for %q store", StoreHDFS)
	}

	if c.Broker.Enabled && len(c.Broker.SeedBrokers) == 0 {
		return fmt.Errorf("broker.seed_brokers: required when broker is enabled")
	}
	return nil
}

// SlogLevel parses LogLevel, e.g. "debug" or "WARN".
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HandlerTimeout=%s
	Currency=%q

	Cart:
	Store=%q
	StoreKey=%q
	SaveTimeout=%s
	MaxSessions=%d

	HDFS:
	Addresses=%q
	Dir=%q

	BrokerConfig:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		CartEvents=%q
	Consumers:
		DemandGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HandlerTimeout,
		c.Currency,
		c.Cart.Store,
		c.Cart.StoreKey,
		c.Cart.SaveTimeout,
		c.Cart.MaxSessions,
		c.HDFS.Addresses,
		c.HDFS.Dir,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.CA != "",
		c.Broker.Topics.CartEvents,
		c.Broker.Consumers.DemandGroup,
	)
}
