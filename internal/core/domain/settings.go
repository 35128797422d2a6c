package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Public polyDB server defaults.
const (
	DefaultHost     = "db.polymake.org"
	DefaultPort     = 27017
	DefaultUsername = "polymake"
	DefaultPassword = "database"
	DefaultDatabase = "polydb"

	// DefaultRateLimit is the number of requests per second sent to the server.
	DefaultRateLimit = 20.0

	// DefaultTimeout bounds connection setup and single requests.
	DefaultTimeout = 30 * time.Second
)

// ConnectionSettings holds how to reach the database.
type ConnectionSettings struct {
	// Host is the server hostname.
	Host string

	// Port is the server port.
	Port int

	// Username and Password authenticate against the server.
	Username string
	Password string

	// TLS enables transport encryption.
	TLS bool

	// DirectConnection disables replica set discovery.
	DirectConnection bool

	// Database is the database holding all collections.
	Database string

	// RateLimit caps requests per second. Zero or less disables throttling.
	RateLimit float64

	// Timeout bounds connection setup and each request.
	Timeout time.Duration
}

// URI renders the mongodb:// connection string including credentials.
func (c ConnectionSettings) URI() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

// Redacted renders the connection string with the password masked.
func (c ConnectionSettings) Redacted() string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, "xxxxx")
	}
	return u.String()
}

// Validate reports settings that cannot produce a connection.
func (c ConnectionSettings) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidInput)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidInput, c.Port)
	}
	if c.Database == "" {
		return fmt.Errorf("%w: empty database name", ErrInvalidInput)
	}
	return nil
}

// MirrorSettings holds the local offline mirror configuration.
type MirrorSettings struct {
	// Dir is the directory holding the mirror database. Empty means the
	// default data directory.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Connection holds database connection settings.
	Connection ConnectionSettings

	// Mirror holds offline mirror settings.
	Mirror MirrorSettings
}

// DefaultAppSettings returns settings for the public read-only server.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Connection: ConnectionSettings{
			Host:             DefaultHost,
			Port:             DefaultPort,
			Username:         DefaultUsername,
			Password:         DefaultPassword,
			TLS:              true,
			DirectConnection: true,
			Database:         DefaultDatabase,
			RateLimit:        DefaultRateLimit,
			Timeout:          DefaultTimeout,
		},
	}
}
