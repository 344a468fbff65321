package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type UpdateConfig struct {
	ContentDir        string        `yaml:"contentDir" validate:"required|unixPath"`
	PackageDir        string        `yaml:"packageDir" validate:"required|unixPath"`
	ResponseTTL       time.Duration `yaml:"responseTTL" validate:"required|min:1"`
	DiffTTL           time.Duration `yaml:"diffTTL" validate:"required|min:1"`
	PackageMaxAgeDays int           `yaml:"packageMaxAgeDays"`
	CleanupInterval   time.Duration `yaml:"cleanupInterval"`
	ServiceVersion    string        `yaml:"serviceVersion"`
}

type CollectorsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	MockMode        bool          `yaml:"mockMode"`
	NewsInterval    time.Duration `yaml:"newsInterval"`
	WeatherInterval time.Duration `yaml:"weatherInterval"`
	RecipesInterval time.Duration `yaml:"recipesInterval"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	WebServer  Server           `yaml:"webServer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Update     UpdateConfig     `yaml:"update"`
	Collectors CollectorsConfig `yaml:"collectors"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}
