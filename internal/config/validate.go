package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that all required fields are set and values are valid.
// Field names in errors use their YAML path, e.g. "archive.bucket".
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return describe(verrs[0])
		}
		return err
	}

	if c.Archive.Enabled && c.Archive.AWS.Region == "" {
		return errors.New("archive.aws.region is required when the archive is enabled")
	}
	if c.Ledger.Enabled && c.Ledger.AWS.Region == "" {
		return errors.New("ledger.aws.region is required when the ledger is enabled")
	}

	return nil
}

func describe(fe validator.FieldError) error {
	path := yamlPath(fe.Namespace())

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", path)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "timezone":
		return fmt.Errorf("%s: unknown time zone %q", path, fe.Value())
	case "min", "max", "gt":
		return fmt.Errorf("%s must be %s %s, got %v", path, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation (value %v)", path, fe.Tag(), fe.Value())
	}
}

// yamlNames maps Go field names whose YAML key is not simply lowercased.
var yamlNames = map[string]string{
	"ReadTimeout":     "read_timeout",
	"WriteTimeout":    "write_timeout",
	"ShutdownTimeout": "shutdown_timeout",
	"MaxBodyBytes":    "max_body_bytes",
	"AllowedOrigins":  "allowed_origins",
	"TimeZone":        "time_zone",
	"SSLMode":         "sslmode",
	"AWS":             "aws",
}

// yamlPath turns "Config.Archive.Bucket" into "archive.bucket".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := yamlNames[p]; ok {
			parts[i] = name
			continue
		}
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
