package database

import (
	"fmt"
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a base URL with a database name.
// sslmode=disable is appended when the URL does not set sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string

	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", strings.TrimRight(parts[0], "/"), databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}

// RedactDatabaseURL hides the password part of a database URL for logging
func RedactDatabaseURL(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil || u.User == nil {
		return databaseURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
