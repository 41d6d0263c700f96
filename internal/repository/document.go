package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"token-service/internal/domain/token"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a token document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	extYAML = ".yaml"
	extYML  = ".yml"

	errDecodeDocumentFmt    = "failed to decode %s token document: %w"
	errInvalidRecordFmt     = "token record %d: %w"
	errDuplicateTokenFmt    = "token record %d: duplicate token id"
	errUnsupportedFormatFmt = "unsupported token document format: %s"
)

var ErrEmptyTokenID = errors.New("token id cannot be empty")

// record is one entry of a token document:
//
//	[{"token": "token1234", "permissions": ["read", "write"]}]
type record struct {
	Token       string   `json:"token" yaml:"token"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

// FormatFromPath picks YAML for .yaml/.yml names and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case extYAML, extYML:
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeTokens parses a token document. Unknown permissions, empty ids and
// duplicate ids reject the whole document.
func DecodeTokens(data []byte, format Format) ([]token.Token, error) {
	var records []record

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	default:
		return nil, fmt.Errorf(errUnsupportedFormatFmt, format)
	}
	if err != nil {
		return nil, fmt.Errorf(errDecodeDocumentFmt, format, err)
	}

	tokens := make([]token.Token, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.Token == "" {
			return nil, fmt.Errorf(errInvalidRecordFmt, i, ErrEmptyTokenID)
		}
		if _, dup := seen[r.Token]; dup {
			return nil, fmt.Errorf(errDuplicateTokenFmt, i)
		}
		seen[r.Token] = struct{}{}

		perms, err := ParsePermissions(r.Permissions)
		if err != nil {
			return nil, fmt.Errorf(errInvalidRecordFmt, i, err)
		}

		tokens = append(tokens, token.Token{ID: r.Token, Permissions: perms})
	}

	return tokens, nil
}

// ParsePermissions converts stored permission strings to permissions.
func ParsePermissions(values []string) ([]token.Permission, error) {
	perms := make([]token.Permission, 0, len(values))
	for _, v := range values {
		p, err := token.ParsePermission(v)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}
