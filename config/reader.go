package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/drivecore/logging"
)

// Read reads a config from the given file, expanding ${VAR} references from the environment.
// Fields the file leaves out keep their Default values.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}

	cfg := Default()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     cfg,
		Metadata:   &md,
		ZeroFields: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrapf(err, "cannot decode config %q", originalPath)
	}
	if len(md.Unused) > 0 {
		logger.Warnw("config has unknown fields", "path", originalPath, "fields", md.Unused)
	}

	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return cfg, nil
}
