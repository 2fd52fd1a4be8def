package request

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateBodySchema checks the body file against a JSON schema before
// dispatch. A failed validation is a fatal pre-dispatch error, the same
// as a missing file.
func ValidateBodySchema(bodyFile, schemaFile string) error {
	body, err := os.ReadFile(bodyFile)
	if err != nil {
		return fmt.Errorf("cannot read body file: %w", err)
	}
	schema, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("cannot read schema file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var issues []string
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return fmt.Errorf("body does not match schema:\n  %s", strings.Join(issues, "\n  "))
	}

	return nil
}
