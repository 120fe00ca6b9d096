package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Game    GameConfig    `mapstructure:"game"`
	Caller  CallerConfig  `mapstructure:"caller"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI          string `mapstructure:"uri"`
	Database     string `mapstructure:"database"`
	SnapshotColl string `mapstructure:"snapshot_collection"`
	Enabled      bool   `mapstructure:"enabled"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URI      string `mapstructure:"uri"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration int    `mapstructure:"expiration"` // in hours
}

// AdminConfig holds operator credentials
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

// GameConfig holds game-specific configuration
type GameConfig struct {
	ReservationMinutes int     `mapstructure:"reservation_minutes"`
	BombCount          int     `mapstructure:"bomb_count"`
	BombsPerGame       int     `mapstructure:"bombs_per_game"`
	DefaultPoolSize    int     `mapstructure:"default_pool_size"`
	DefaultCardPrice   float64 `mapstructure:"default_card_price"`
}

// CallerConfig holds the announcement provider configuration
type CallerConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Load reads configuration from a file or environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bingoloco-backend")

	// Environment variables
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; we'll just use environment and defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 15)
	viper.SetDefault("server.write_timeout", 15)

	// MongoDB defaults
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "bingoloco")
	viper.SetDefault("mongodb.snapshot_collection", "snapshots")
	viper.SetDefault("mongodb.enabled", true)

	// Redis defaults
	viper.SetDefault("redis.uri", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", true)

	// JWT defaults
	viper.SetDefault("jwt.secret", "replace-with-secure-secret")
	viper.SetDefault("jwt.expiration", 24)

	// Admin defaults
	viper.SetDefault("admin.password", "bingoloco")

	// Game defaults
	viper.SetDefault("game.reservation_minutes", 2)
	viper.SetDefault("game.bomb_count", 3)     // numbers revealed by a bomb draw in total
	viper.SetDefault("game.bombs_per_game", 3) // bomb numbers secretly picked at game start
	viper.SetDefault("game.default_pool_size", 50)
	viper.SetDefault("game.default_card_price", 2)

	// Caller defaults
	viper.SetDefault("caller.url", "") // empty means announcements use the fallback phrase
	viper.SetDefault("caller.timeout_seconds", 5)
}
