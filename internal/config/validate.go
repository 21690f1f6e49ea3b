package config

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Validate checks every section and reports all offending fields at once.
func (c *Config) Validate() error {
	var fields []string
	add := func(cond bool, name string) {
		if cond {
			fields = append(fields, name)
		}
	}

	add(strings.TrimSpace(c.Server.Addr) == "", "server.addr")
	add(c.Server.ReadTimeout <= 0, "server.read_timeout")
	add(c.Server.WriteTimeout <= 0, "server.write_timeout")

	add(c.Paths.Templates == "", "paths.templates")
	add(c.Paths.Public == "", "paths.public")

	add(strings.TrimSpace(c.Gallery.Manifest) == "", "gallery.manifest")

	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		add(c.Session.SQLitePath == "", "session.sqlite_path")
	default:
		fields = append(fields, "session.backend")
	}
	add(c.Session.IdleTTL <= 0, "session.idle_ttl")
	add(!validKey(c.Session.HashKey, 32, 64), "session.hash_key")
	add(!validKey(c.Session.BlockKey, 16, 24, 32), "session.block_key")

	add(c.API.RatePerSecond < 0, "api.rate_per_second")
	add(c.API.Burst < 0, "api.burst")

	add(c.I18N.Fallback == "", "i18n.fallback")
	add(c.I18N.Fallback != "" && !slices.Contains(c.I18N.Supported, c.I18N.Fallback), "i18n.supported")

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

// validKey accepts an empty key (an ephemeral one is generated) or hex of an allowed size.
func validKey(v string, sizes ...int) bool {
	if v == "" {
		return true
	}
	raw, err := hex.DecodeString(v)
	if err != nil {
		return false
	}
	return slices.Contains(sizes, len(raw))
}

// SessionKeys decodes the configured cookie keys. Nil means generate one at startup.
func (c *Config) SessionKeys() (hash, block []byte) {
	if c.Session.HashKey != "" {
		hash, _ = hex.DecodeString(c.Session.HashKey)
	}
	if c.Session.BlockKey != "" {
		block, _ = hex.DecodeString(c.Session.BlockKey)
	}
	return hash, block
}
