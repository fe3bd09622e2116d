package database

import (
	"strings"
)

// ConstructDatabaseURL joins a base server URL and a database name.
// sslmode=disable is appended unless the URL already sets an sslmode.
// An empty database name returns the base URL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	url := base + "/" + databaseName
	if hasQuery && query != "" {
		url += "?" + query
	}

	if !strings.Contains(url, "sslmode=") {
		if strings.Contains(url, "?") {
			url += "&sslmode=disable"
		} else {
			url += "?sslmode=disable"
		}
	}

	return url
}
