package obdb

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-sql-driver/mysql"
)

// Config describes an OceanBase (or SeekDB) connection. Both engines speak
// the MySQL wire protocol, so the DSN is a regular MySQL DSN.
type Config struct {
	// Hostname of the OceanBase server.
	Hostname string `json:"hostname" yaml:"hostname"`
	// Port of the OceanBase server, typically 2881.
	Port int `json:"port" yaml:"port"`
	// DBName is the database to connect to. Optional.
	DBName string `json:"db_name,omitempty" yaml:"db_name,omitempty"`
	// Username to authenticate with.
	Username string `json:"username" yaml:"username"`
	// Password to authenticate with. Optional.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// IsValid reports whether the config carries enough information to attempt a
// connection.
func (c *Config) IsValid() bool {
	return c != nil && c.Hostname != "" && c.Port != 0 && c.Username != ""
}

// DSN builds the driver DSN. The driver splits credentials on the last '@',
// so no escaping is needed. The connection is pinned to utf8mb4.
func (c *Config) DSN(opts *Options) string {
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Hostname, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{
		"charset": "utf8mb4",
	}
	if opts != nil {
		if opts.DialTimeout > 0 {
			mc.Timeout = opts.DialTimeout.Duration()
		}
		if opts.ReadTimeout > 0 {
			mc.ReadTimeout = opts.ReadTimeout.Duration()
		}
		if opts.WriteTimeout > 0 {
			mc.WriteTimeout = opts.WriteTimeout.Duration()
		}
	}
	return mc.FormatDSN()
}

// CacheKey returns a stable identity for the connection, without the
// password, suitable for schema cache keys.
func (c *Config) CacheKey() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.Username, c.Hostname, c.Port, c.DBName)
}

// LoadConfig loads a connection config from a yaml or json file,
// with environment variable expansion.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Duration is a JSON-friendly wrapper over time.Duration that accepts
// Go duration strings like "5s".
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(bs []byte) error {
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return errors.WithStack(err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.WithStack(err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Options carries per-call connection tuning, supplied by the caller as a
// JSON object. Unknown keys are rejected.
type Options struct {
	MaxOpenConns    int      `json:"max_open_conns,omitempty"`
	MaxIdleConns    int      `json:"max_idle_conns,omitempty"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime,omitempty"`
	DialTimeout     Duration `json:"dial_timeout,omitempty"`
	ReadTimeout     Duration `json:"read_timeout,omitempty"`
	WriteTimeout    Duration `json:"write_timeout,omitempty"`
}

// ParseOptions parses connection options from a JSON object string.
// Empty input returns nil options.
func ParseOptions(raw string) (*Options, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var opts Options
	if err := dec.Decode(&opts); err != nil {
		return nil, errors.WithMessage(err, "invalid JSON for connect options")
	}
	return &opts, nil
}
