// Package envexpr contains the pure parser for env value expressions.
//
// An env value in a manifest is either a literal, a reference to a stored
// secret, or a reference to another unit's address:
//
//	LOG_LEVEL: debug                 -> Text
//	API_TOKEN: secret:stripe         -> Secret{Key: "stripe"}
//	DB_URL:    this:pg:connection    -> This{Service: "pg", Method: "connection"}
//
// Parsing never fails: any value that does not match a recognized form is a
// Text literal. Resolution against secrets and connectables happens in the
// deploy package.
package envexpr

import "strings"

// =============================================================================
// Expression Values
// =============================================================================

// Value is one parsed env value expression.
type Value interface {
	envValue()
}

// Text is a literal string value.
type Text struct {
	Raw string
}

// Secret references a stored secret by key.
type Secret struct {
	Key string
}

// This references another unit of the same project by short name.
type This struct {
	Service string
	Method  string
}

func (Text) envValue()   {}
func (Secret) envValue() {}
func (This) envValue()   {}

// Recognized expression prefixes.
const (
	secretPrefix = "secret:"
	thisPrefix   = "this:"
)

// =============================================================================
// Parser
// =============================================================================

// Parse parses a single env value. Unrecognized shapes - including a bare
// "this:<service>" without a method - are returned as Text.
func Parse(raw string) Value {
	if key, ok := strings.CutPrefix(raw, secretPrefix); ok {
		return Secret{Key: key}
	}
	if rest, ok := strings.CutPrefix(raw, thisPrefix); ok {
		service, method, found := strings.Cut(rest, ":")
		if !found || service == "" {
			return Text{Raw: raw}
		}
		return This{Service: service, Method: method}
	}
	return Text{Raw: raw}
}

// =============================================================================
// Method Classification
// =============================================================================

// IsConnectionMethod reports whether a This method asks for the referent's
// connection URL.
func IsConnectionMethod(method string) bool {
	return method == "connection" || method == "conn"
}

// IsLinkMethod reports whether a This method asks for the referent's
// internal host:port link.
func IsLinkMethod(method string) bool {
	return method == "internal" || method == "link" || method == "url"
}
