package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr      = ":3000"
	DefaultTokenExpiration = 60 // minutes
	DefaultRedisPoolSize   = 10
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"poolSize"`
}

// JWTConfig holds the token signing settings. SecretKey is required; the
// process refuses to start without it.
type JWTConfig struct {
	SecretKey         string `mapstructure:"secretKey"`
	Issuer            string `mapstructure:"issuer"`
	Audience          string `mapstructure:"audience"`
	ExpirationMinutes int    `mapstructure:"expirationMinutes"`
}

type Config struct {
	Debug        bool        `mapstructure:"debug"`
	ListenAddr   string      `mapstructure:"listenAddr"`
	AllowOrigins []string    `mapstructure:"allowOrigins"`
	MySQL        MySQLConfig `mapstructure:"mysql"`
	Redis        RedisConfig `mapstructure:"redis"`
	JWT          JWTConfig   `mapstructure:"jwt"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.JWT.ExpirationMinutes <= 0 {
		c.JWT.ExpirationMinutes = DefaultTokenExpiration
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = DefaultRedisPoolSize
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secretKey is not configured")
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
