package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Format is a config file encoding
type Format int

// formats
const (
	TOML Format = iota
	YAML
)

// errors
var (
	ErrUnknownFormat = errors.New("unknown config format")
)

// FormatOf returns the format of the path by its extension, toml when unknown
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// LoadFile parse the config from the file of the path
func LoadFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	return errors.Wrap(LoadReader(file, FormatOf(path), v), path)
}

// LoadString parse the config from the string
func LoadString(data string, f Format, v interface{}) error {
	return LoadReader(bytes.NewReader([]byte(data)), f, v)
}

// LoadReader parse the config from the file of the reader
func LoadReader(r io.Reader, f Format, v interface{}) error {
	switch f {
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(v); err != nil {
			return errors.WithStack(err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
			return errors.WithStack(err)
		}
	default:
		return ErrUnknownFormat
	}
	return nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process environment.
// Variables already set are kept. A missing file is ignored.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

// Getenv returns the first non-empty value among the named variables
func Getenv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); len(v) > 0 {
			return v
		}
	}
	return ""
}
