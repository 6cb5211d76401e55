package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yerzhank/ride-dispatch/pkg/configparser"
)

// Flags
var (
	configPathFlag = flag.String("config-path", "", "path to YAML config file")
	helpFlag       = flag.Bool("help", false, "print help message and exit")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Server   ServerConfig
		Log      LogConfig
		Auth     AuthConfig
		Dispatch DispatchConfig
		Area     ServiceAreaConfig
		Pricing  PricingConfig
		Routing  RoutingConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
	}

	ServerConfig struct {
		Port            string        `env:"SERVER_PORT" default:"8080"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}

	AuthConfig struct {
		TokenTTL        time.Duration `env:"AUTH_TOKEN_TTL" default:"24h"`
		JWTSecret       string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		ProvisionSecret string        `env:"AUTH_PROVISION_SECRET" default:"provisionsecret"`
	}

	DispatchConfig struct {
		// SearchRadiusKm limits the initial candidate search. MaxCandidates 0
		// means every driver inside the radius gets an offer.
		SearchRadiusKm   float64       `env:"DISPATCH_SEARCH_RADIUS_KM" default:"5"`
		MaxCandidates    int           `env:"DISPATCH_MAX_CANDIDATES" default:"0"`
		OfferTimeout     time.Duration `env:"DISPATCH_OFFER_TIMEOUT" default:"15s"`
		HeartbeatTimeout time.Duration `env:"DISPATCH_HEARTBEAT_TIMEOUT" default:"30s"`
		SweepInterval    time.Duration `env:"DISPATCH_SWEEP_INTERVAL" default:"5s"`
		RetentionWindow  time.Duration `env:"DISPATCH_RETENTION_WINDOW" default:"1h"`
	}

	// ServiceAreaConfig bounds accepted coordinates. Defaults cover Bangalore.
	ServiceAreaConfig struct {
		MinLat float64 `env:"AREA_MIN_LAT" default:"12.8"`
		MaxLat float64 `env:"AREA_MAX_LAT" default:"13.2"`
		MinLng float64 `env:"AREA_MIN_LNG" default:"77.4"`
		MaxLng float64 `env:"AREA_MAX_LNG" default:"77.8"`
	}

	PricingConfig struct {
		MaxSurge float64 `env:"PRICING_MAX_SURGE" default:"3.0"`
	}

	RoutingConfig struct {
		BaseURL string        `env:"ROUTING_BASE_URL"`
		APIKey  string        `env:"ROUTING_API_KEY"`
		Timeout time.Duration `env:"ROUTING_TIMEOUT" default:"5s"`
	}

	DatabaseConfig struct {
		Enabled  bool   `env:"DATABASE_ENABLED" default:"false"`
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"dispatch_user"`
		Password string `env:"DATABASE_PASSWORD" default:"dispatch_pass"`
		Database string `env:"DATABASE_DATABASE" default:"dispatch_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	// pool_* params are read by pgxpool.ParseConfig
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&pool_max_conns=%d&pool_min_conns=%d&pool_max_conn_lifetime=%s&pool_max_conn_idle_time=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.MaxConns,
		c.MinConns,
		c.MaxConnLifetime,
		c.MaxConnIdleTime,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig() (*Config, error) {
	flag.Parse()

	if *helpFlag {
		PrintHelp()
		os.Exit(0)
	}

	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(*configPathFlag, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
