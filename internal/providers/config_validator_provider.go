package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"angelupdate/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct-tag rules plus the cross-field checks that
// tags cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	if cv.conf.Redis.Enabled && cv.conf.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required when redis is enabled")
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.Size <= 0 {
		return fmt.Errorf("invalid config: cache.size must be positive when cache is enabled")
	}
	if cv.conf.Collectors.Enabled {
		if cv.conf.Collectors.NewsInterval <= 0 || cv.conf.Collectors.WeatherInterval <= 0 || cv.conf.Collectors.RecipesInterval <= 0 {
			return fmt.Errorf("invalid config: collector intervals must be positive when collectors are enabled")
		}
	}
	return nil
}
