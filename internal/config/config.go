package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dkeye/voiceroom/internal/domain"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Client ClientConfig `mapstructure:"client"`
}

// ServerConfig drives cmd/roomd.
type ServerConfig struct {
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Secret       string        `mapstructure:"secret" validate:"required,min=8"`
	AppKey       string        `mapstructure:"app_key" validate:"required"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	ReadLimit    int64         `mapstructure:"read_limit" validate:"gt=0"`
	PingPeriod   time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	DefaultSeats int           `mapstructure:"default_seats" validate:"min=0"`
	RateLimit    int           `mapstructure:"rate_limit" validate:"gt=0"`
	RateInterval time.Duration `mapstructure:"rate_interval" validate:"gt=0"`
	ICEServers   []string      `mapstructure:"ice_servers"`
}

// ClientConfig drives the SDK side: backend client, transport and layout.
type ClientConfig struct {
	BackendURL  string        `mapstructure:"backend_url" validate:"required,url"`
	SignalURL   string        `mapstructure:"signal_url" validate:"required,url"`
	AppKey      string        `mapstructure:"app_key"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`
	SeatsPerRow int           `mapstructure:"seats_per_row" validate:"min=1"`
	Rows        int           `mapstructure:"rows" validate:"min=0"`
	RecvSlots   int           `mapstructure:"recv_slots" validate:"min=0"`
	EnableMedia bool          `mapstructure:"enable_media"`
	ICEServers  []string      `mapstructure:"ice_servers"`
}

// Layout is the seat layout of a freshly joined room.
func (c ClientConfig) Layout() domain.LayoutConfig {
	return domain.LayoutForCount(c.Rows*c.SeatsPerRow, c.SeatsPerRow)
}

func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName when it exists, applies VOICEROOM_ env overrides
// and validates the result.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("VOICEROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Seats: %d\n", cfg.Server.Mode, cfg.Server.Port, cfg.Server.DefaultSeats)
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.secret", "voiceroom-dev-secret")
	v.SetDefault("server.app_key", "dev")
	v.SetDefault("server.token_ttl", "6h")
	v.SetDefault("server.read_limit", 32768)
	v.SetDefault("server.ping_period", "54s")
	v.SetDefault("server.default_seats", 2*domain.DefaultSeatsPerRow)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_interval", "1s")
	v.SetDefault("server.ice_servers", []string{})

	v.SetDefault("client.backend_url", "http://localhost:8080")
	v.SetDefault("client.signal_url", "ws://localhost:8080/rtc")
	v.SetDefault("client.app_key", "dev")
	v.SetDefault("client.http_timeout", "10s")
	v.SetDefault("client.seats_per_row", domain.DefaultSeatsPerRow)
	v.SetDefault("client.rows", 2)
	v.SetDefault("client.recv_slots", 2*domain.DefaultSeatsPerRow)
	v.SetDefault("client.enable_media", false)
	v.SetDefault("client.ice_servers", []string{})
}
