package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		DSN string `env:"DATABASE_URL,required"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	VK struct {
		BaseURL string `env:"VK_API_BASE_URL" envDefault:"https://api.vk.com/method"`
		Version string `env:"VK_API_VERSION" envDefault:"5.199"`
		Token   string `env:"VK_ACCESS_TOKEN,required"`

		// Upper bound for a single reactions fetch. Larger reaction sets
		// are truncated, collection does not paginate past it.
		ReactionFetchLimit int `env:"VK_REACTION_FETCH_LIMIT" envDefault:"1000"`

		TimeoutSeconds int `env:"VK_API_TIMEOUT_SECONDS" envDefault:"10"`
	}

	Scheduler struct {
		BaseURL        string `env:"SCHEDULER_BASE_URL,required"`
		TimeoutSeconds int    `env:"SCHEDULER_TIMEOUT_SECONDS" envDefault:"10"`
	}

	Contest struct {
		DefaultFinishHours  int `env:"CONTEST_DEFAULT_FINISH_HOURS" envDefault:"24"`
		DefaultRestartHours int `env:"CONTEST_DEFAULT_RESTART_HOURS" envDefault:"24"`
		AccountCacheTTLMin  int `env:"CONTEST_ACCOUNT_CACHE_TTL_MINUTES" envDefault:"60"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine, production sets variables directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
