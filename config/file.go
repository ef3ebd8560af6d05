package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFileEnvironment reads a YAML or TOML file into environment-style
// variables. Nested tables join their keys with "_" and every key is
// upper-cased, so `db: {driver: mysql}` becomes DB_DRIVER=mysql. Lists are
// joined with ",".
func LoadFileEnvironment(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	case ".toml":
		err = toml.Unmarshal(raw, &doc)
	default:
		return nil, fmt.Errorf("config file %s: unsupported extension (want .yaml, .yml or .toml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	out := map[string]string{}
	if err := flatten("", doc, out); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return out, nil
}

func flatten(prefix string, v any, out map[string]string) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := strings.ToUpper(k)
			if prefix != "" {
				name = prefix + "_" + name
			}
			if err := flatten(name, val[k], out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalar(item)
			if !ok {
				return fmt.Errorf("%s: lists may only hold scalars", prefix)
			}
			parts = append(parts, s)
		}
		out[prefix] = strings.Join(parts, ",")
		return nil
	}
	s, ok := scalar(v)
	if !ok {
		return fmt.Errorf("%s: unsupported value %T", prefix, v)
	}
	out[prefix] = s
	return nil
}

func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	}
	return "", false
}

// MergeEnvironment layers the process environment over file values so that
// real environment variables always win.
func MergeEnvironment(file map[string]string, environ []string) map[string]string {
	out := make(map[string]string, len(file)+len(environ))
	maps.Copy(out, file)
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
