package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Log         LogConfig
	Reservation ReservationConfig
	Search      SearchConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type ReservationConfig struct {
	HoldDuration     time.Duration
	TxTimeout        time.Duration
	MaxRetryAttempts int
}

type SearchConfig struct {
	ResultLimit      int
	MaxDistanceKm    float64
	DefaultCity      string
	DefaultLatitude  float64
	DefaultLongitude float64
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "medreserve")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "medreserve")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RESERVATION_HOLD_DURATION", "1h")
	viper.SetDefault("RESERVATION_TX_TIMEOUT", "5s")
	viper.SetDefault("RESERVATION_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("SEARCH_RESULT_LIMIT", 10)
	viper.SetDefault("SEARCH_MAX_DISTANCE_KM", 10.0)
	viper.SetDefault("SEARCH_DEFAULT_CITY", "Hyderabad")
	viper.SetDefault("SEARCH_DEFAULT_LATITUDE", 17.385)
	viper.SetDefault("SEARCH_DEFAULT_LONGITUDE", 78.486)

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	holdDuration, err := time.ParseDuration(viper.GetString("RESERVATION_HOLD_DURATION"))
	if err != nil {
		return nil, err
	}

	txTimeout, err := time.ParseDuration(viper.GetString("RESERVATION_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Reservation: ReservationConfig{
			HoldDuration:     holdDuration,
			TxTimeout:        txTimeout,
			MaxRetryAttempts: viper.GetInt("RESERVATION_MAX_RETRY_ATTEMPTS"),
		},
		Search: SearchConfig{
			ResultLimit:      viper.GetInt("SEARCH_RESULT_LIMIT"),
			MaxDistanceKm:    viper.GetFloat64("SEARCH_MAX_DISTANCE_KM"),
			DefaultCity:      viper.GetString("SEARCH_DEFAULT_CITY"),
			DefaultLatitude:  viper.GetFloat64("SEARCH_DEFAULT_LATITUDE"),
			DefaultLongitude: viper.GetFloat64("SEARCH_DEFAULT_LONGITUDE"),
		},
	}

	return cfg, nil
}
