package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment overrides.
const EnvPrefix = "WORKSPACE_CONSOLE_"

// Load reads the configuration layers from dir for the named environment.
// An empty dir skips the files and applies only defaults and environment overrides.
func Load(dir, env string) (Config, error) {
	cfg := Default()

	merged := map[string]any{}
	if dir != "" {
		base, err := loadYAMLFile(filepath.Join(dir, "base.yaml"))
		if err != nil {
			return Config{}, err
		}
		merged = mergeMaps(merged, base)

		if env != "" && env != "base" {
			overlay, err := loadYAMLFile(filepath.Join(dir, env+".yaml"))
			if err != nil {
				return Config{}, err
			}
			merged = mergeMaps(merged, overlay)
		}

		secrets, err := loadEnvFile(filepath.Join(dir, "secrets.env"))
		if err != nil {
			return Config{}, err
		}
		merged = substitute(merged, secrets)
	}

	if len(merged) > 0 {
		data, err := yaml.Marshal(merged)
		if err != nil {
			return Config{}, fmt.Errorf("failed to re-encode configuration: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadYAMLFile returns the document in path, or an empty map when it does not exist.
func loadYAMLFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// loadEnvFile reads KEY=VALUE lines. Blank lines and # comments are skipped and
// surrounding quotes are removed.
func loadEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	env := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		env[strings.TrimSpace(key)] = value
	}
	return env, nil
}

// mergeMaps returns dst overlaid with src; nested maps merge recursively.
func mergeMaps(dst, src map[string]any) map[string]any {
	result := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		result[k] = v
	}
	for k, v := range src {
		dstMap, dstOK := result[k].(map[string]any)
		srcMap, srcOK := v.(map[string]any)
		if dstOK && srcOK {
			result[k] = mergeMaps(dstMap, srcMap)
			continue
		}
		result[k] = v
	}
	return result
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substitute resolves ${VAR} in string values from secrets, then the environment.
// Unresolved placeholders are left as they are.
func substitute(doc map[string]any, secrets map[string]string) map[string]any {
	resolve := func(s string) string {
		return placeholder.ReplaceAllStringFunc(s, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := secrets[name]; ok {
				return v
			}
			if v, ok := os.LookupEnv(name); ok {
				return v
			}
			return m
		})
	}

	var walk func(v any) any
	walk = func(v any) any {
		switch val := v.(type) {
		case string:
			resolved := resolve(val)
			if resolved != val && placeholder.FindString(val) == val {
				return scalar(resolved)
			}
			return resolved
		case map[string]any:
			out := make(map[string]any, len(val))
			for k, item := range val {
				out[k] = walk(item)
			}
			return out
		case []any:
			out := make([]any, len(val))
			for i, item := range val {
				out[i] = walk(item)
			}
			return out
		default:
			return v
		}
	}
	return walk(doc).(map[string]any)
}

// scalar types a value that replaced a whole placeholder, so "${WORKERS}" can
// fill an int field. Anything but a bool or number stays a string.
func scalar(s string) any {
	var typed any
	if err := yaml.Unmarshal([]byte(s), &typed); err != nil {
		return s
	}
	switch typed.(type) {
	case bool, int, float64:
		return typed
	}
	return s
}

type lookupFunc func(key string) (string, bool)

// applyEnv applies WORKSPACE_CONSOLE_* overrides.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"TRANSPORT":                &cfg.Server.Transport,
		"HTTP_ADDR":                &cfg.Server.HTTPAddr,
		"ACCESS_TOKEN_HEADER":      &cfg.Server.AccessTokenHeader,
		"SERVICE_ACCOUNT_KEY_FILE": &cfg.Google.ServiceAccountKeyFile,
		"OAUTH_CLIENT_ID":          &cfg.Google.OAuthClientID,
		"OAUTH_CLIENT_SECRET":      &cfg.Google.OAuthClientSecret,
		"OAUTH_REDIRECT_URL":       &cfg.Google.OAuthRedirectURL,
		"SESSION_BACKEND":          &cfg.Session.Backend,
		"REDIS_URL":                &cfg.Session.RedisURL,
		"LOG_LEVEL":                &cfg.Logging.Level,
		"LOG_FORMAT":               &cfg.Logging.Format,
		"METRICS_ADDR":             &cfg.Metrics.Addr,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	if v, ok := lookup(EnvPrefix + "GMAIL_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sGMAIL_WORKERS %q: %w", EnvPrefix, v, err)
		}
		cfg.Gmail.Workers = n
	}

	if v, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS_ENABLED %q: %w", EnvPrefix, v, err)
		}
		cfg.Metrics.Enabled = b
	}

	durations := map[string]*time.Duration{
		"TOOL_TIMEOUT":     &cfg.Timeouts.Tool,
		"EXCHANGE_TIMEOUT": &cfg.Timeouts.Exchange,
		"API_TIMEOUT":      &cfg.Timeouts.API,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
