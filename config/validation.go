package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// ValidateConfig checks struct constraints and the rules that depend on the
// current environment.
func ValidateConfig(cfg *Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, ValidationError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
			}.Error())
		}
	}

	switch cfg.Env {
	case Production:
		if cfg.JWT.Secret == defaultJWTSecret {
			problems = append(problems, ValidationError{Field: "Config.JWT.Secret", Message: "jwt_secret secret is required in production"}.Error())
		}
		if cfg.Database.Driver != "postgres" {
			problems = append(problems, ValidationError{Field: "Config.Database.Driver", Message: "production requires postgres"}.Error())
		}
	case CI:
		if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
			problems = append(problems, ValidationError{Field: "Config.Database.Password", Message: "TEST_DB_PASSWORD environment variable is required in CI environment"}.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}

	return nil
}
