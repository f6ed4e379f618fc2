// Package response renders the JSON envelopes every endpoint answers with.
package response

import "github.com/labstack/echo/v4"

// Envelope wraps a successful result.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope describes a failed request. Errors lists per-field problems
// for validation failures and is empty otherwise.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// JSON writes data in a success envelope.
func JSON(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// Error writes an error envelope.
func Error(c echo.Context, status int, message string, details []string) error {
	if details == nil {
		details = []string{}
	}
	return c.JSON(status, ErrorEnvelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     details,
	})
}
