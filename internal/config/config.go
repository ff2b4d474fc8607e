package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"rootfind/internal/logger"
	"rootfind/internal/solver"
)

// Config — настройки сервера и решателей
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Solver   SolverConfig  `mapstructure:"solver"`
	Log      logger.Config `mapstructure:"log"`
	Problems string        `mapstructure:"problems"` // путь к YAML-каталогу задач; пусто — встроенный
}

// ServerConfig — HTTP-сервер
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RunTTL         time.Duration `mapstructure:"run_ttl"`          // сколько хранить запуск после старта
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`   // запусков в секунду, <=0 — без ограничения
	RateLimitBurst int           `mapstructure:"rate_limit_burst"` // всплеск
}

// SolverConfig — значения по умолчанию для запросов без tol/maxIter
type SolverConfig struct {
	Tol     float64 `mapstructure:"tol"`
	MaxIter int     `mapstructure:"max_iter"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.run_ttl", "30m")
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("solver.tol", solver.DefaultTol)
	v.SetDefault("solver.max_iter", solver.DefaultMaxIter)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("problems", "")
}

// Load читает конфигурацию: значения по умолчанию, затем файл (если задан),
// затем переменные окружения ROOTFIND_*, например ROOTFIND_SERVER_ADDR.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("rootfind")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Solver.Tol <= 0 {
		return fmt.Errorf("config: solver.tol должно быть > 0, получено %g", c.Solver.Tol)
	}
	if c.Solver.MaxIter <= 0 {
		return fmt.Errorf("config: solver.max_iter должно быть > 0, получено %d", c.Solver.MaxIter)
	}
	if c.Server.RunTTL <= 0 {
		return fmt.Errorf("config: server.run_ttl должно быть > 0")
	}
	return nil
}
