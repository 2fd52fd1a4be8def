package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/reqctl/packages/request"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

type ConsoleFormatter struct {
	writer  io.Writer
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// Summary prints the pre-dispatch summary shown in verbose mode:
// method, final URL, which optional files are set, and the resolved
// content-type classification.
func (f *ConsoleFormatter) Summary(cfg *request.Config, shape request.Shape, finalURL string) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", bold("Dispatching:"), cfg.Method, cyan(finalURL))

	if cfg.BodyFile != "" {
		fmt.Fprintf(f.writer, "  Body:         %s\n", cfg.BodyFile)
	}
	if cfg.UploadFile != "" {
		fmt.Fprintf(f.writer, "  Upload:       %s\n", cfg.UploadFile)
	}
	if cfg.CookieFile != "" {
		fmt.Fprintf(f.writer, "  Cookies:      %s\n", cfg.CookieFile)
	}
	fmt.Fprintf(f.writer, "  Content-Type: %s\n", shape.Classification())
	if cfg.RequestID != "" {
		fmt.Fprintf(f.writer, "  Request-Id:   %s\n", cfg.RequestID)
	}

	if cfg.ContentType == request.ContentTypeJSON && cfg.BodyFile != "" {
		if preview := jsonPreview(cfg.BodyFile); preview != "" {
			fmt.Fprintf(f.writer, "  Payload:      %s\n", yellow(preview))
		}
	}
}

// DryRun prints the curl command line that would have been executed.
func (f *ConsoleFormatter) DryRun(binary string, args []string) {
	fmt.Fprintf(f.writer, "%s %s\n", binary, strings.Join(args, " "))
}

func (f *ConsoleFormatter) Error(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// jsonPreview summarizes a JSON body in one line: top-level keys for
// objects, element count for arrays, a warning for invalid JSON.
func jsonPreview(bodyFile string) string {
	data, err := os.ReadFile(bodyFile)
	if err != nil {
		return ""
	}
	if !gjson.ValidBytes(data) {
		return "warning: body is not valid JSON"
	}
	parsed := gjson.ParseBytes(data)
	if parsed.IsArray() {
		return fmt.Sprintf("JSON array, %d items", len(parsed.Array()))
	}
	if parsed.IsObject() {
		var keys []string
		parsed.ForEach(func(key, _ gjson.Result) bool {
			keys = append(keys, key.String())
			return len(keys) < 8
		})
		return fmt.Sprintf("JSON object {%s}", strings.Join(keys, ", "))
	}
	return "JSON scalar"
}
