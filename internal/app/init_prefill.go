package app

import (
	"net/url"
	"strconv"
	"strings"
)

// InitPrefill carries database connection hints for the init form.
type InitPrefill struct {
	DatabaseType    string `json:"database_type"`
	DatabaseHost    string `json:"database_host,omitempty"`
	DatabasePort    int    `json:"database_port,omitempty"`
	DatabaseUser    string `json:"database_user,omitempty"`
	DatabaseName    string `json:"database_name,omitempty"`
	DatabasePath    string `json:"database_path,omitempty"`
	DatabaseSSLMode string `json:"database_ssl_mode,omitempty"`
}

// initPrefillFromDSN derives init form defaults from an existing DSN,
// typically supplied via the DB_CONNECTION environment variable.
func initPrefillFromDSN(dsn string) InitPrefill {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return InitPrefill{DatabaseType: "sqlite", DatabasePath: defaultSQLitePath}
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		prefill := InitPrefill{DatabaseType: "postgres", DatabasePort: 5432}
		u, err := url.Parse(trimmed)
		if err != nil {
			return prefill
		}
		prefill.DatabaseHost = u.Hostname()
		if port, errPort := strconv.Atoi(u.Port()); errPort == nil && port > 0 {
			prefill.DatabasePort = port
		}
		if u.User != nil {
			prefill.DatabaseUser = u.User.Username()
		}
		prefill.DatabaseName = strings.TrimPrefix(u.Path, "/")
		if mode := u.Query().Get("sslmode"); mode != "" {
			prefill.DatabaseSSLMode = mode
		}
		return prefill
	}

	path := strings.TrimPrefix(trimmed, "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		path = defaultSQLitePath
	}
	return InitPrefill{DatabaseType: "sqlite", DatabasePath: path}
}
