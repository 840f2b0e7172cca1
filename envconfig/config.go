package envconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidHostPort = errors.New("invalid port specified in GUGU_HOST")

const defaultPort = "11451"

var (
	// Set via GUGU_ORIGINS in the environment
	AllowOrigins []string
	// Set via GUGU_CODEC in the environment
	Codec string
	// Set via GUGU_DEBUG in the environment. 1 enables debug logging, 2 or
	// more enables tracing.
	Debug int
	// Set via GUGU_HOST in the environment
	Host *url.URL
	// Set via GUGU_MAX_INPUT in the environment
	MaxInputBytes int64
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GUGU_CODEC":     {"GUGU_CODEC", Codec, "Codec used when none is given (default \"gugugaga\")"},
		"GUGU_DEBUG":     {"GUGU_DEBUG", Debug, "Show additional debug information (e.g. GUGU_DEBUG=1)"},
		"GUGU_HOST":      {"GUGU_HOST", Host, "IP Address for the gugugaga server (default 127.0.0.1:11451)"},
		"GUGU_MAX_INPUT": {"GUGU_MAX_INPUT", MaxInputBytes, "Maximum request body size in bytes (default 1048576)"},
		"GUGU_ORIGINS":   {"GUGU_ORIGINS", AllowOrigins, "A comma separated list of allowed origins"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

var defaultAllowOrigins = []string{
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug = 0
	if debug := clean("GUGU_DEBUG"); debug != "" {
		if n, err := strconv.Atoi(debug); err == nil {
			Debug = n
		} else if b, err := strconv.ParseBool(debug); err == nil {
			if b {
				Debug = 1
			}
		} else {
			Debug = 1
		}
	}

	Codec = "gugugaga"
	if codec := clean("GUGU_CODEC"); codec != "" {
		Codec = codec
	}

	host, err := getHost()
	if err != nil {
		slog.Error("invalid setting, ignoring", "GUGU_HOST", os.Getenv("GUGU_HOST"), "error", err)
		host = &url.URL{Scheme: "http", Host: net.JoinHostPort("127.0.0.1", defaultPort)}
	}
	Host = host

	MaxInputBytes = 1 << 20
	if limit := clean("GUGU_MAX_INPUT"); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n <= 0 {
			slog.Error("invalid setting must be greater than zero", "GUGU_MAX_INPUT", limit, "error", err)
		} else {
			MaxInputBytes = n
		}
	}

	AllowOrigins = nil
	if origins := clean("GUGU_ORIGINS"); origins != "" {
		AllowOrigins = strings.Split(origins, ",")
	}
	for _, allowOrigin := range defaultAllowOrigins {
		AllowOrigins = append(AllowOrigins,
			fmt.Sprintf("http://%s", allowOrigin),
			fmt.Sprintf("https://%s", allowOrigin),
			fmt.Sprintf("http://%s:*", allowOrigin),
			fmt.Sprintf("https://%s:*", allowOrigin),
		)
	}
}

// getHost parses GUGU_HOST, which may be a bare host, host:port or a full
// scheme://host:port URL.
func getHost() (*url.URL, error) {
	port := defaultPort
	scheme, hostport, ok := strings.Cut(clean("GUGU_HOST"), "://")
	switch {
	case !ok:
		scheme, hostport = "http", scheme
	case scheme == "http":
		port = "80"
	case scheme == "https":
		port = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, p, err := net.SplitHostPort(hostport)
	if err != nil {
		host = "127.0.0.1"
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	} else {
		port = p
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		return nil, ErrInvalidHostPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}, nil
}
