package config

import "os"

// ExpandEnv replaces ${VAR} and $VAR with environment variables. A default
// can be given as ${VAR:-fallback}; it is used when VAR is unset or empty.
// Example: "postgres://${DB_HOST:-localhost}/tx" → "postgres://localhost/tx"
func ExpandEnv(s string) string {
	return os.Expand(s, lookupEnv)
}

func lookupEnv(name string) string {
	if len(name) == 1 && !isNameChar(name[0]) {
		// $$, $* and friends are not variables here; keep them verbatim
		return "$" + name
	}

	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == '-' {
			if v := os.Getenv(name[:i]); v != "" {
				return v
			}
			return name[i+2:]
		}
	}
	return os.Getenv(name)
}

func isNameChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ExpandEnvMap expands all values in a map
func ExpandEnvMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}

	expanded := make(map[string]string, len(m))
	for key, value := range m {
		expanded[key] = ExpandEnv(value)
	}
	return expanded
}
