package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arloliu/dlf/decoder"
	"github.com/arloliu/dlf/structure"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // Decode, source or store failure
	ExitUsage   = 2 // Invalid flags, arguments or configuration
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitUsage)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// Sample kinds as printed by the decode and follow commands.
const (
	kindPolled = "polled"
	kindEvent  = "event"
)

// record is a sample tagged with the logfile it came from.
type record struct {
	Time time.Time
	Kind string
	decoder.Sample
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// formatValue renders a value for text and CSV output. Records are printed as
// JSON objects.
func formatValue(v any) (string, error) {
	if r, ok := v.(structure.Record); ok {
		b, err := json.Marshal(r)
		if err != nil {
			return "", err
		}

		return string(b), nil
	}

	return fmt.Sprint(v), nil
}

// sampleWriter writes records in one of the output formats.
type sampleWriter struct {
	format  string
	w       io.Writer
	csv     *csv.Writer
	enc     *json.Encoder
	started bool
}

func newSampleWriter(w io.Writer, format string) *sampleWriter {
	sw := &sampleWriter{format: format, w: w}
	switch format {
	case "csv":
		sw.csv = csv.NewWriter(w)
	case "json":
		sw.enc = json.NewEncoder(w)
	}

	return sw
}

type jsonRecord struct {
	Tick   uint64    `json:"tick"`
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Stream string    `json:"stream"`
	Value  any       `json:"value"`
}

func (sw *sampleWriter) Write(r record) error {
	switch sw.format {
	case "json":
		return sw.enc.Encode(jsonRecord{
			Tick:   r.Tick,
			Time:   r.Time,
			Kind:   r.Kind,
			Stream: r.StreamID,
			Value:  structure.JSONValue(r.Value),
		})
	case "csv":
		if !sw.started {
			sw.started = true
			if err := sw.csv.Write([]string{"tick", "time", "kind", "stream", "value"}); err != nil {
				return err
			}
		}

		value, err := formatValue(r.Value)
		if err != nil {
			return err
		}

		return sw.csv.Write([]string{
			fmt.Sprint(r.Tick),
			r.Time.Format(timeLayout),
			r.Kind,
			r.StreamID,
			value,
		})
	default:
		value, err := formatValue(r.Value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(sw.w, "%s %d %s %s=%s\n", r.Time.Format(timeLayout), r.Tick, r.Kind, r.StreamID, value)

		return err
	}
}

// Flush flushes buffered CSV output.
func (sw *sampleWriter) Flush() error {
	if sw.csv == nil {
		return nil
	}
	sw.csv.Flush()

	return sw.csv.Error()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
