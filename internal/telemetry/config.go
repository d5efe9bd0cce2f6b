package telemetry

import (
	"strconv"
	"strings"
	"time"
)

const (
	envPrefix      = "SYSGRAPH_TRACE_OTEL_"
	envEndpoint    = envPrefix + "ENDPOINT"
	envInsecure    = envPrefix + "INSECURE"
	envHeaders     = envPrefix + "HEADERS"
	envService     = envPrefix + "SERVICE"
	envDialTimeout = envPrefix + "TIMEOUT"
	envSampleRatio = envPrefix + "SAMPLE_RATIO"
)

type Config struct {
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string
	Version     string
	DialTimeout time.Duration
	SampleRatio float64
}

func Default() Config {
	return Config{
		ServiceName: "sysgraph",
		DialTimeout: 5 * time.Second,
		SampleRatio: 1,
	}
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv overlays SYSGRAPH_TRACE_OTEL_* variables on Default. Invalid
// values are ignored.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Default()
	if getenv == nil {
		return cfg
	}
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg.Endpoint = get(envEndpoint)
	if val := get(envService); val != "" {
		cfg.ServiceName = val
	}
	if val, err := strconv.ParseBool(get(envInsecure)); err == nil {
		cfg.Insecure = val
	}
	if dur, err := time.ParseDuration(get(envDialTimeout)); err == nil && dur > 0 {
		cfg.DialTimeout = dur
	}
	if ratio, err := strconv.ParseFloat(get(envSampleRatio), 64); err == nil && ratio >= 0 && ratio <= 1 {
		cfg.SampleRatio = ratio
	}
	cfg.Headers = ParseHeaders(get(envHeaders))
	return cfg
}

// ParseHeaders converts comma separated key=value pairs into a header map,
// returning nil when nothing usable is present.
func ParseHeaders(spec string) map[string]string {
	var headers map[string]string
	for _, entry := range strings.Split(spec, ",") {
		key, value, _ := strings.Cut(entry, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}
