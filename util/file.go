package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileExists reports whether filename exists and is not a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// KeyFile is the on-disk shape of key.json used by live tests and the feed command.
type KeyFile struct {
	APIKey     string `json:"api_key"`
	APISecKey  string `json:"api_sec_key"`
	Passphrase string `json:"passphrase"`
}

// LoadKey reads a key.json file.
func LoadKey(filename string) (KeyFile, error) {
	key := KeyFile{}
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return key, fmt.Errorf("read key file: %w", err)
	}
	if err := json.Unmarshal(bytes, &key); err != nil {
		return key, fmt.Errorf("decode key file %s: %w", filename, err)
	}
	if key.APIKey == "" || key.APISecKey == "" || key.Passphrase == "" {
		return key, errors.New("key file: api_key, api_sec_key and passphrase required")
	}
	return key, nil
}
