package request

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ContentType is the payload encoding hint supplied via --content-type.
type ContentType string

const (
	ContentTypeUnset      ContentType = ""
	ContentTypeJSON       ContentType = "json"
	ContentTypeURLEncoded ContentType = "urlencoded"
	ContentTypeMultipart  ContentType = "multipart"
)

// ParseContentType validates a --content-type value.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(s) {
	case ContentTypeUnset, ContentTypeJSON, ContentTypeURLEncoded, ContentTypeMultipart:
		return ContentType(s), nil
	}
	return ContentTypeUnset, fmt.Errorf("invalid content type %q (must be one of: json, urlencoded, multipart)", s)
}

// Config is the validated per-invocation request configuration. It is
// built once from flags and config-file defaults and not mutated after
// validation.
type Config struct {
	URL         string
	Method      string
	Debug       bool
	Verbose     bool
	BodyFile    string
	ContentType ContentType
	UploadFile  string
	CookieFile  string

	Headers      []string // extra headers, "Key: Value" form
	Timeout      time.Duration
	Insecure     bool
	Proxy        string
	SchemaFile   string
	RequestID    string // sent as X-Request-Id when non-empty
	DebugSession string // query parameter value appended by Debug
}

// DefaultDebugSession is the XDEBUG session name appended to the URL
// when --debug is set and no override is configured.
const DefaultDebugSession = "vscode"

// Validate checks the configuration before any dispatch happens. All
// failures are fatal: they are reported before the transport binary is
// ever invoked.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("missing required parameter: --url")
	}
	if c.Method == "" {
		return fmt.Errorf("missing required parameter: --method")
	}

	for _, f := range []struct{ flag, path string }{
		{"--body", c.BodyFile},
		{"--file", c.UploadFile},
		{"--cookie", c.CookieFile},
		{"--schema", c.SchemaFile},
	} {
		if f.path == "" {
			continue
		}
		if err := checkReadableFile(f.path); err != nil {
			return fmt.Errorf("%s: %w", f.flag, err)
		}
	}

	if c.SchemaFile != "" && c.BodyFile == "" {
		return fmt.Errorf("--schema requires --body")
	}

	return nil
}

func checkReadableFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file not readable: %s", path)
	}
	_ = f.Close()
	return nil
}

// FinalURL returns the dispatch URL. With Debug set, the debug session
// query parameter is appended by plain concatenation so the URL the
// user typed is never re-escaped.
func (c *Config) FinalURL() string {
	if !c.Debug {
		return c.URL
	}
	session := c.DebugSession
	if session == "" {
		session = DefaultDebugSession
	}
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + "XDEBUG_SESSION=" + session
}
