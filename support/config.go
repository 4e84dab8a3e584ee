package support

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/weegigs/wee-visits-go/visits"
)

const localEnvFile = ".env.local"

type Config struct {
	Env            string
	Endpoint       string
	Schema         visits.Schema
	TargetID       string
	MarkerTTL      time.Duration
	Timeout        time.Duration
	AllowedOrigins []string
	Port           string
	LogLevel       string
	TraceExporter  string
	OTLPEndpoint   string
	HoneycombTeam  string
	HoneycombSet   string
	JaegerEndpoint string
}

const (
	LocalEnv   = "local"
	DefaultEnv = "production"
)

// LoadConfig reads configuration from the environment. A .env.local file is
// loaded first when VISITS_ENV is local.
func LoadConfig() (Config, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("VISITS_ENV")))
	if env == "" {
		env = DefaultEnv
	}

	if env == LocalEnv {
		if err := godotenv.Load(localEnvFile); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "failed to load %s", localEnvFile)
		}
	}

	return configFrom(env, viperFromEnv())
}

func viperFromEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("VISITS_SCHEMA", "flat")
	v.SetDefault("VISITS_FIELD", visits.DefaultCountField)
	v.SetDefault("VISITS_ENVELOPE", false)
	v.SetDefault("VISITS_TARGET_ID", visits.DefaultTargetID)
	v.SetDefault("VISITS_COOKIE_TTL_DAYS", 30)
	v.SetDefault("VISITS_TIMEOUT", visits.DefaultTimeout)
	v.SetDefault("PORT", "9080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRACE_EXPORTER", "none")
	v.SetDefault("OTLP_ENDPOINT", DefaultOTLPEndpoint)
	v.SetDefault("JAEGER_ENDPOINT", DefaultJaegerEndpoint)

	return v
}

func configFrom(env string, v *viper.Viper) (Config, error) {
	endpoint := v.GetString("VISITS_ENDPOINT")
	if endpoint == "" {
		return Config{}, errors.New("VISITS_ENDPOINT is not set")
	}

	kind := visits.NormalizeKind(v.GetString("VISITS_SCHEMA"))
	key := v.GetString("VISITS_FIELD")
	if kind == visits.KeyedSchema {
		key = v.GetString("VISITS_DOMAIN")
	}

	schema, err := visits.ParseSchema(string(kind), key, v.GetBool("VISITS_ENVELOPE"))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid VISITS_SCHEMA")
	}

	days := v.GetInt("VISITS_COOKIE_TTL_DAYS")
	if days < 1 {
		return Config{}, fmt.Errorf("VISITS_COOKIE_TTL_DAYS must be positive, got %d", days)
	}

	timeout := v.GetDuration("VISITS_TIMEOUT")
	if timeout <= 0 {
		return Config{}, fmt.Errorf("VISITS_TIMEOUT must be positive, got %q", v.GetString("VISITS_TIMEOUT"))
	}

	exporter := strings.ToLower(v.GetString("TRACE_EXPORTER"))
	switch exporter {
	case "none", "console", "otlp", "jaeger":
	default:
		return Config{}, fmt.Errorf("unknown TRACE_EXPORTER %q", exporter)
	}

	return Config{
		Env:            env,
		Endpoint:       endpoint,
		Schema:         schema,
		TargetID:       v.GetString("VISITS_TARGET_ID"),
		MarkerTTL:      time.Duration(days) * 24 * time.Hour,
		Timeout:        timeout,
		AllowedOrigins: splitList(v.GetString("VISITS_ALLOWED_ORIGINS")),
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		TraceExporter:  exporter,
		OTLPEndpoint:   v.GetString("OTLP_ENDPOINT"),
		HoneycombTeam:  v.GetString("HONEYCOMB_TEAM"),
		HoneycombSet:   v.GetString("HONEYCOMB_DATASET"),
		JaegerEndpoint: v.GetString("JAEGER_ENDPOINT"),
	}, nil
}

func (c Config) CounterConfig() visits.CounterConfig {
	return visits.CounterConfig{Endpoint: c.Endpoint, Schema: c.Schema, Timeout: c.Timeout}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
