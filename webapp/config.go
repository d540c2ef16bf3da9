package webapp

import (
	"fmt"
	"os"
	"strings"

	"github.com/launchdarkly/app-test-harness/codec"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

const (
	DefaultSessionCookieName = "APP_SESSION"
	DefaultFlashCookieName   = "APP_FLASH"
	DefaultLanguage          = "default"

	// Override keys that set Config fields rather than entries in Values.
	KeyApplicationName   = "application.name"
	KeyApplicationSecret = "application.secret"
	KeySessionCookieName = "session.cookieName"
	KeyFlashCookieName   = "flash.cookieName"
)

// Config is the configuration of one application instance. It can be loaded from a JSON or YAML
// file with LoadConfig, and adjusted per test with WithOverrides.
type Config struct {
	Name               string                   `json:"name"`
	Secret             string                   `json:"secret"`
	SessionCookieName  string                   `json:"sessionCookieName"`
	FlashCookieName    string                   `json:"flashCookieName"`
	CORSAllowedOrigins []string                 `json:"corsAllowedOrigins"`
	Messages           Messages                 `json:"messages"`
	Values             map[string]ldvalue.Value `json:"values"`

	// Loggers receives the application's own log output. The zero value logs to standard error
	// at Info level and above.
	Loggers ldlog.Loggers `json:"-"`
}

// DefaultConfig returns the settings that LoadConfig and ParseConfig start from.
func DefaultConfig() Config {
	return Config{
		Name:              "application",
		Secret:            "changeme",
		SessionCookieName: DefaultSessionCookieName,
		FlashCookieName:   DefaultFlashCookieName,
		Messages:          DefaultMessages(),
	}
}

// LoadConfig reads a JSON or YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("could not read configuration file %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("error in configuration file %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig parses JSON or YAML configuration data. Any property that the data does not set
// keeps its value from DefaultConfig, and messages are merged with the default messages.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	config.Messages = nil
	if err := codec.ParseJSONOrYAML(data, &config); err != nil {
		return Config{}, err
	}
	config.Messages = DefaultMessages().Merge(config.Messages)
	return config, nil
}

// WithOverrides returns a copy of the configuration with additional settings applied on top of
// it. The keys application.name, application.secret, session.cookieName, and flash.cookieName
// set the corresponding fields; every other key is stored in Values.
func (c Config) WithOverrides(overrides map[string]any) Config {
	ret := c
	ret.Values = make(map[string]ldvalue.Value, len(c.Values)+len(overrides))
	for k, v := range c.Values {
		ret.Values[k] = v
	}
	ret.CORSAllowedOrigins = append([]string(nil), c.CORSAllowedOrigins...)
	ret.Messages = c.Messages.Merge(nil)
	for k, v := range overrides {
		value := codec.ToJSON(v)
		switch k {
		case KeyApplicationName:
			ret.Name = value.StringValue()
		case KeyApplicationSecret:
			ret.Secret = value.StringValue()
		case KeySessionCookieName:
			ret.SessionCookieName = value.StringValue()
		case KeyFlashCookieName:
			ret.FlashCookieName = value.StringValue()
		default:
			ret.Values[k] = value
		}
	}
	return ret
}

// Value returns a configuration value, or ldvalue.Null() if there is none. A dotted key such as
// "db.default.url" is first looked up as-is, then as a path through nested objects.
func (c Config) Value(key string) ldvalue.Value {
	if v, ok := c.Values[key]; ok {
		return v
	}
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return ldvalue.Null()
	}
	v, ok := c.Values[parts[0]]
	if !ok {
		return ldvalue.Null()
	}
	for _, p := range parts[1:] {
		v = v.GetByKey(p)
	}
	return v
}

// GetString returns a string configuration value, or defaultValue if the key is missing or is
// not a string.
func (c Config) GetString(key, defaultValue string) string {
	v := c.Value(key)
	if v.Type() != ldvalue.StringType {
		return defaultValue
	}
	return v.StringValue()
}
