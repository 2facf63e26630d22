package config

import (
	"os"
	"strings"
)

// Environment names the deployment the process runs in
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV (or APP_ENV). CI=true wins over both so test
// runners never pick up Docker secrets.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	name := os.Getenv("ENV")
	if name == "" {
		name = os.Getenv("APP_ENV")
	}
	return ParseEnvironment(name)
}

// ParseEnvironment maps a name to an Environment. Unknown names and
// "dev" fall back to Development; "prod" is accepted for Production.
func ParseEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

func (e Environment) IsProduction() bool {
	return e == Production
}
