package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"angelupdate/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "ANGEL_LOG_LEVEL")
	viper.BindEnv("cache.enabled", "ANGEL_CACHE_ENABLED")
	viper.BindEnv("cache.size", "ANGEL_CACHE_SIZE")
	viper.BindEnv("redis.enabled", "ANGEL_REDIS_ENABLED")
	viper.BindEnv("redis.addr", "ANGEL_REDIS_ADDR")
	viper.BindEnv("redis.password", "ANGEL_REDIS_PASSWORD")
	viper.BindEnv("update.contentDir", "ANGEL_CONTENT_DIR")
	viper.BindEnv("update.packageDir", "ANGEL_PACKAGE_DIR")
	viper.BindEnv("collectors.enabled", "ANGEL_COLLECTORS_ENABLED")
	viper.BindEnv("collectors.mockMode", "ANGEL_COLLECTORS_MOCK")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "AngelUpdateService"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
