package app

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var pemPrefix = []byte("-----BEGIN ")

// ReadPrivateKey loads a private key file. A leading "~/" expands to the home
// directory. Files holding a base64-encoded PEM block, as exported by some
// secret stores, are decoded.
func ReadPrivateKey(fs afero.Fs, path string) ([]byte, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, expanded)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return DecodeKey(string(data))
}

// DecodeKey returns PEM content as-is and otherwise tries standard and raw
// base64. Input that decodes to neither is returned unchanged and left for the
// SSH parser to reject.
func DecodeKey(value string) ([]byte, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, fmt.Errorf("key value is empty")
	}

	if strings.HasPrefix(v, string(pemPrefix)) {
		return []byte(value), nil
	}

	compact := strings.Join(strings.Fields(v), "")
	if decoded, err := base64.StdEncoding.DecodeString(compact); err == nil && bytes.HasPrefix(decoded, pemPrefix) {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(compact); err == nil && bytes.HasPrefix(decoded, pemPrefix) {
		return decoded, nil
	}

	return []byte(value), nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
