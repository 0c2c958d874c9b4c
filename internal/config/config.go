package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	JWT      JWTConfig       `mapstructure:"jwt"`
	Admin    AdminSeedConfig `mapstructure:"admin"`
	Game     GameConfig      `mapstructure:"game"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`     // debug, release
	LogLevel string `mapstructure:"logLevel"` // zap level name; empty keeps the mode default
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, mysql, sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

// AdminSeedConfig bootstraps the first operator account.
type AdminSeedConfig struct {
	DefaultUsername string `mapstructure:"defaultUsername"`
	DefaultPassword string `mapstructure:"defaultPassword"`
}

type GameConfig struct {
	Stakes            []int64 `mapstructure:"stakes"`
	StartingBalance   int64   `mapstructure:"startingBalance"`
	BotAvatar         string  `mapstructure:"botAvatar"`
	LockTTL           int     `mapstructure:"lockTTL"` // seconds
	Seed              int64   `mapstructure:"seed"`    // 0 picks a random seed
	MaxAutomatedTurns int     `mapstructure:"maxAutomatedTurns"`
	LobbyInterval     int     `mapstructure:"lobbyInterval"` // seconds
}

func (g GameConfig) LockTTLDuration() time.Duration {
	return time.Duration(g.LockTTL) * time.Second
}

func (g GameConfig) LobbyIntervalDuration() time.Duration {
	return time.Duration(g.LobbyInterval) * time.Second
}

var GlobalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("jwt.expire", 72)
	v.SetDefault("game.stakes", []int64{10, 50, 100})
	v.SetDefault("game.startingBalance", 1000)
	v.SetDefault("game.lockTTL", 10)
	v.SetDefault("game.maxAutomatedTurns", 10000)
	v.SetDefault("game.lobbyInterval", 10)
}

// Load reads path into a Config. TONK_* environment variables override file
// values, e.g. TONK_DATABASE_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TONK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
	GlobalConfig = cfg
}
