package request

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// PartKind distinguishes the three ways a form part reaches curl.
type PartKind int

const (
	// PartFile uploads the binary contents of a file ("name=@path").
	PartFile PartKind = iota
	// PartFileText embeds the text contents of a file ("name=<path").
	PartFileText
	// PartRaw passes a pre-formatted field specification through
	// untouched, delegating syntax to the transport tool.
	PartRaw
)

// Part is a single named field of a multipart request.
type Part struct {
	Kind PartKind
	Name string
	Path string // PartFile, PartFileText
	Spec string // PartRaw
}

// Shape is the dispatchable form of a request: exactly one of the
// three variants below.
type Shape interface {
	// Classification is the resolved content-type label shown in the
	// verbose summary.
	Classification() string
}

// NoBody is a request without a payload.
type NoBody struct{}

func (NoBody) Classification() string { return "none" }

// RawPayload sends the body file as the request payload. ContentType
// is the header value to set, or empty to let the transport tool apply
// its own default.
type RawPayload struct {
	BodyFile    string
	ContentType string
}

func (p RawPayload) Classification() string {
	if p.ContentType == "" {
		return "curl default"
	}
	return p.ContentType
}

// MultipartForm sends one or more named form parts.
type MultipartForm struct {
	Parts []Part
}

func (MultipartForm) Classification() string { return "multipart/form-data" }

// BuildShape reduces a validated Config to its request shape. Upload
// file takes priority over the content-type tag: when both an upload
// and a body are present the body always travels as the "data" form
// part, whatever the tag says.
func BuildShape(c *Config) (Shape, error) {
	switch {
	case c.UploadFile != "" && c.BodyFile != "":
		return MultipartForm{Parts: []Part{
			{Kind: PartFile, Name: "file", Path: c.UploadFile},
			{Kind: PartFileText, Name: "data", Path: c.BodyFile},
		}}, nil

	case c.UploadFile != "":
		return MultipartForm{Parts: []Part{
			{Kind: PartFile, Name: "file", Path: c.UploadFile},
		}}, nil

	case c.BodyFile != "":
		switch c.ContentType {
		case ContentTypeJSON:
			return RawPayload{BodyFile: c.BodyFile, ContentType: "application/json"}, nil
		case ContentTypeURLEncoded:
			return RawPayload{BodyFile: c.BodyFile, ContentType: "application/x-www-form-urlencoded"}, nil
		case ContentTypeMultipart:
			parts, err := readFieldSpecs(c.BodyFile)
			if err != nil {
				return nil, err
			}
			return MultipartForm{Parts: parts}, nil
		default:
			return RawPayload{BodyFile: c.BodyFile}, nil
		}

	default:
		return NoBody{}, nil
	}
}

// readFieldSpecs reads pre-formatted multipart field specifications,
// one per line. Blank lines and # comments are skipped; everything
// else is handed to the transport tool verbatim.
func readFieldSpecs(path string) ([]Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var parts []Part
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, Part{Kind: PartRaw, Spec: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read field specs: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no form fields found in %s", path)
	}
	return parts, nil
}
