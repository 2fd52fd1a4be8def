package request

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_MissingURL(t *testing.T) {
	cfg := &Config{Method: "GET"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--url")
}

func TestValidate_MissingMethod(t *testing.T) {
	cfg := &Config{URL: "http://localhost/api"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--method")
}

func TestValidate_BodyFileNotFound(t *testing.T) {
	cfg := &Config{
		URL:      "http://localhost/api",
		Method:   "POST",
		BodyFile: "/nonexistent/body.json",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--body")
	assert.Contains(t, err.Error(), "file not found")
}

func TestValidate_UploadFileNotFound(t *testing.T) {
	cfg := &Config{
		URL:        "http://localhost/api",
		Method:     "POST",
		UploadFile: "/nonexistent/report.pdf",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}

func TestValidate_CookieFileNotFound(t *testing.T) {
	cfg := &Config{
		URL:        "http://localhost/api",
		Method:     "GET",
		CookieFile: "/nonexistent/cookies.txt",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--cookie")
}

func TestValidate_DirectoryIsNotAFile(t *testing.T) {
	cfg := &Config{
		URL:      "http://localhost/api",
		Method:   "POST",
		BodyFile: t.TempDir(),
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestValidate_SchemaRequiresBody(t *testing.T) {
	schema := writeTempFile(t, "s.json", `{}`)
	cfg := &Config{
		URL:        "http://localhost/api",
		Method:     "POST",
		SchemaFile: schema,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--schema requires --body")
}

func TestValidate_OK(t *testing.T) {
	body := writeTempFile(t, "body.json", `{"a":1}`)
	cfg := &Config{
		URL:      "http://localhost/api",
		Method:   "POST",
		BodyFile: body,
	}
	assert.NoError(t, cfg.Validate())
}

func TestParseContentType(t *testing.T) {
	for _, valid := range []string{"", "json", "urlencoded", "multipart"} {
		_, err := ParseContentType(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseContentType("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content type")
}

func TestFinalURL_NoDebug(t *testing.T) {
	cfg := &Config{URL: "http://localhost/api"}
	assert.Equal(t, "http://localhost/api", cfg.FinalURL())
}

func TestFinalURL_DebugWithoutQuery(t *testing.T) {
	cfg := &Config{URL: "http://localhost/api", Debug: true}
	assert.Equal(t, "http://localhost/api?XDEBUG_SESSION=vscode", cfg.FinalURL())
}

func TestFinalURL_DebugWithExistingQuery(t *testing.T) {
	cfg := &Config{URL: "http://localhost/api?id=1", Debug: true}
	assert.Equal(t, "http://localhost/api?id=1&XDEBUG_SESSION=vscode", cfg.FinalURL())
}

func TestFinalURL_DebugSessionOverride(t *testing.T) {
	cfg := &Config{URL: "http://localhost/api", Debug: true, DebugSession: "phpstorm"}
	assert.Equal(t, "http://localhost/api?XDEBUG_SESSION=phpstorm", cfg.FinalURL())
}
