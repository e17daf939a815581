// Package config reads part parameters from TOML files layered over
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrUnknownKeys is wrapped when a file sets keys the target does not have.
var ErrUnknownKeys = errors.New("unknown keys")

// Load decodes the TOML file at path onto v. v must point to a struct
// already holding defaults; keys absent from the file keep their value.
func Load(path string, v any) error {
	meta, err := toml.DecodeFile(path, v)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := undecoded(meta); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}

// Decode is Load for TOML text held in memory.
func Decode(data string, v any) error {
	meta, err := toml.Decode(data, v)
	if err != nil {
		return err
	}
	return undecoded(meta)
}

func undecoded(meta toml.MetaData) error {
	keys := meta.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(names, ", "))
}

// WriteTemplate encodes v as TOML to a new file at path, preceded by
// comment lines. Existing files are not overwritten.
func WriteTemplate(path string, v any, comments ...string) error {
	var buf bytes.Buffer
	for _, c := range comments {
		buf.WriteString("# " + c + "\n")
	}
	if len(comments) > 0 {
		buf.WriteByte('\n')
	}
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err = fp.Write(buf.Bytes()); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
