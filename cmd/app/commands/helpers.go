// Package commands contains CLI command implementations for the application.
package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// validateFormat rejects output formats other than "text" and "json".
func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// prompt writes label and reads one line from reader.
// A final line without a newline is accepted.
func prompt(reader *bufio.Reader, writer io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(writer, label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a password. On a terminal the input is not echoed;
// otherwise it is read as a line like prompt.
func promptSecret(reader *bufio.Reader, io IOTuple, label string) (string, error) {
	file, ok := io.Reader.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return prompt(reader, io.Writer, label)
	}

	_, _ = fmt.Fprint(io.Writer, label)
	secret, err := term.ReadPassword(int(file.Fd()))
	_, _ = fmt.Fprintln(io.Writer)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(secret), nil
}

// parseExpiry parses a license expiration.
//
// "never" means no expiration. A date in format "YYYY-MM-DD" expires at the
// start of that day in UTC; RFC 3339 timestamps are accepted as is.
func parseExpiry(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "never") {
		return nil, nil
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid expiration (expected YYYY-MM-DD, RFC 3339 timestamp or 'never'): %q",
			value,
		)
	}
	return &t, nil
}

// formatExpiry renders a license expiration for text output.
func formatExpiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return "never"
	}
	return expiresAt.UTC().Format(time.RFC3339)
}

// licenseJSON is the machine-readable view of a license. The signature is omitted.
type licenseJSON struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func newLicenseJSON(license *licenseDomain.License) *licenseJSON {
	if license == nil {
		return nil
	}
	return &licenseJSON{
		ID:          license.ID.String(),
		Fingerprint: license.Fingerprint.String(),
		IssuedAt:    license.IssuedAt,
		ExpiresAt:   license.ExpiresAt,
	}
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(writer io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}

// writeLicenseText prints the license fields in human-readable form.
func writeLicenseText(writer io.Writer, license *licenseDomain.License) {
	_, _ = fmt.Fprintf(writer, "License ID:   %s\n", license.ID)
	_, _ = fmt.Fprintf(writer, "Fingerprint:  %s\n", license.Fingerprint)
	_, _ = fmt.Fprintf(writer, "Issued At:    %s\n", license.IssuedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Expires At:   %s\n", formatExpiry(license.ExpiresAt))
}
