// Package curl builds and runs the invocation of the external curl
// binary. reqctl delegates all transport mechanics (connections, TLS,
// redirects, timeouts) to curl; this package only constructs the
// argument list and forwards the child's output and exit status.
package curl

import (
	"fmt"
	"strconv"

	"github.com/abdul-hamid-achik/reqctl/packages/request"
)

// DefaultBinary is the transport binary used when no override is
// configured.
const DefaultBinary = "curl"

// Args constructs the full curl argument list (excluding the binary
// name) for a validated config and its shape. The URL goes last,
// following curl convention.
func Args(cfg *request.Config, shape request.Shape) []string {
	args := []string{"-X", cfg.Method}

	if cfg.Verbose {
		args = append(args, "-v")
	}
	if cfg.CookieFile != "" {
		args = append(args, "-b", cfg.CookieFile)
	}
	if cfg.Timeout > 0 {
		args = append(args, "--max-time", strconv.Itoa(int(cfg.Timeout.Seconds())))
	}
	if cfg.Insecure {
		args = append(args, "-k")
	}
	if cfg.Proxy != "" {
		args = append(args, "-x", cfg.Proxy)
	}
	for _, h := range cfg.Headers {
		args = append(args, "-H", h)
	}
	if cfg.RequestID != "" {
		args = append(args, "-H", "X-Request-Id: "+cfg.RequestID)
	}

	switch s := shape.(type) {
	case request.RawPayload:
		if s.ContentType != "" {
			args = append(args, "-H", "Content-Type: "+s.ContentType)
		}
		args = append(args, "--data-binary", "@"+s.BodyFile)
	case request.MultipartForm:
		for _, p := range s.Parts {
			args = append(args, "-F", formField(p))
		}
	}

	return append(args, cfg.FinalURL())
}

func formField(p request.Part) string {
	switch p.Kind {
	case request.PartFile:
		return fmt.Sprintf("%s=@%s", p.Name, p.Path)
	case request.PartFileText:
		return fmt.Sprintf("%s=<%s", p.Name, p.Path)
	default:
		return p.Spec
	}
}
