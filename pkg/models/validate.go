// Package models defines the upstream and derived metadata documents handled
// by mcmeta: Mojang manifests and version descriptors, Forge listings,
// per-build file manifests, installer profiles and the derived Forge index.
//
// Descriptor types that are layered on top of each other implement
// [merge.Mergeable]. Documents fetched from upstream are checked with
// [Decode], which reports the offending JSON and runs the struct-level
// validation rules registered in this package.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

var validate *validator.Validate

// validOSNames are the os names accepted in library rules.
var validOSNames = []string{
	"osx",
	"linux",
	"windows",
	"windows-arm64",
	"osx-arm64",
	"linux-arm64",
	"linux-arm32",
}

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("osname", func(fl validator.FieldLevel) bool {
		return slices.Contains(validOSNames, fl.Field().String())
	})
	_ = validate.RegisterValidation("ruleaction", func(fl validator.FieldLevel) bool {
		a := fl.Field().String()
		return a == "allow" || a == "disallow"
	})
}

// checker is implemented by documents with rules that tags cannot express.
type checker interface {
	Check() error
}

// Validate runs the struct validation rules on v, then v's own Check
// method when it has one.
func Validate(v any) error {
	if reflect.Indirect(reflect.ValueOf(v)).Kind() == reflect.Struct {
		if err := validate.Struct(v); err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeValidation, err, "%T failed validation", v)
		}
	}
	if c, ok := v.(checker); ok {
		if err := c.Check(); err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeValidation, err, "%T failed validation", v)
		}
	}
	return nil
}

// =============================================================================
// Decoding
// =============================================================================

// contextWindow is how many bytes of the body are quoted around a decode error.
const contextWindow = 200

// Decode unmarshals body into v and validates the result.
// With strict set, fields that v does not declare are rejected.
// Failures are DECODE_ERROR or VALIDATION_ERROR coded errors.
func Decode(body []byte, v any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return decodeError(err, body, v)
	}
	if dec.More() {
		return mcerrors.New(mcerrors.ErrCodeDecode, "%T: trailing data after document", v)
	}
	return Validate(v)
}

func decodeError(err error, body []byte, v any) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		offset    int64 = -1
	)
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return mcerrors.Wrap(mcerrors.ErrCodeDecode, err, "decode %T", v)
	}
	return mcerrors.Wrap(mcerrors.ErrCodeDecode, err,
		"decode %T at offset %d (may be truncated) %q", v, offset, Snippet(body, offset, contextWindow))
}

// Snippet returns up to n bytes of body ending at offset.
func Snippet(body []byte, offset int64, n int) string {
	end := min(int(offset), len(body))
	if end < 0 {
		end = 0
	}
	start := max(end-n, 0)
	return string(body[start:end])
}

// EncodeIndent marshals v the way documents are persisted.
func EncodeIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}
