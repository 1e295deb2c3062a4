// Package chainfile reads items and stat sheets from YAML files and parses
// --var flags
package chainfile

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
)

// LoadItem reads an item document. Unknown keys are rejected.
func LoadItem(path string) (*roll.Item, error) {
	var item roll.Item
	if err := decodeFile(path, &item); err != nil {
		return nil, err
	}
	defaultKinds(&item)
	return &item, nil
}

// LoadSheet reads a stat sheet document
func LoadSheet(path string) (*roll.StatSheet, error) {
	var sheet roll.StatSheet
	if err := decodeFile(path, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// DecodeItem reads an item document from r
func DecodeItem(r io.Reader) (*roll.Item, error) {
	var item roll.Item
	if err := decode(r, &item); err != nil {
		return nil, err
	}
	defaultKinds(&item)
	return &item, nil
}

func decodeFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundf("file %s not found", path)
		}
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := decode(bytes.NewReader(raw), out); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}

func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return errors.InvalidArgument("document is empty")
		}
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid yaml")
	}
	return nil
}

// defaultKinds treats steps without a kind as standard
func defaultKinds(item *roll.Item) {
	for _, c := range item.Chains {
		if c == nil {
			continue
		}
		for _, s := range c.Steps {
			if s != nil && s.Kind == "" {
				s.Kind = roll.StepKindStandard
			}
		}
	}
}

// ParseVars turns "key=value" pairs into variable values. Values go through
// cast, so "15", "+2" and "3.0" are all accepted.
func ParseVars(pairs []string) (map[string]int, error) {
	vars := make(map[string]int, len(pairs))
	vb := errors.NewValidationBuilder()

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			vb.Fieldf("var", "%q is not key=value", pair)
			continue
		}

		n, err := toInt(strings.TrimSpace(value))
		if err != nil {
			vb.Fieldf(key, "%q is not a number", value)
			continue
		}
		vars[key] = n
	}

	if err := vb.Build(); err != nil {
		return nil, err
	}
	return vars, nil
}

func toInt(value string) (int, error) {
	if n, err := cast.ToIntE(strings.TrimPrefix(value, "+")); err == nil {
		return n, nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, errors.InvalidArgumentf("%s is not a whole number", value)
	}
	return int(f), nil
}
