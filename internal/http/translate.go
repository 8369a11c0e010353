package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
)

// marker maps an exception name the server embeds in an error body to an error code.
type marker struct {
	name string
	code zen.ErrorCode
}

// notFoundMarkers and conflictMarkers are checked in order; the first match wins.
var (
	notFoundMarkers = []marker{
		{name: "DoesNotExistException", code: zen.CodeDoesNotExist},
	}

	conflictMarkers = []marker{
		{name: "StackComponentExistsError", code: zen.CodeComponentExists},
		{name: "StackExistsError", code: zen.CodeStackExists},
		{name: "EntityExistsError", code: zen.CodeEntityExists},
	}
)

// errorBody is the structured error payload. Detail is either a list of
// strings (exception name first) or a single string.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Code   zen.ErrorCode   `json:"code"`
}

// Translate maps a status code and body to the decoded payload or a typed
// error. Only 204 and 205 may carry an empty body; it decodes as JSON null.
func Translate(statusCode int, body []byte) ([]byte, error) {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 && (statusCode == http.StatusNoContent || statusCode == http.StatusResetContent) {
			return []byte("null"), nil
		}

		if len(trimmed) == 0 || !json.Valid(trimmed) {
			return nil, &zen.Error{
				Code:       zen.CodeMalformedResponse,
				StatusCode: statusCode,
				Body:       truncate(string(body)),
			}
		}

		return trimmed, nil
	}

	return nil, StatusError(statusCode, body)
}

// StatusError builds the typed error of a non-success response.
func StatusError(statusCode int, body []byte) *zen.Error {
	detail, explicit := decodeErrorBody(body)

	zerr := &zen.Error{
		Code:       classify(statusCode, explicit, string(body)),
		StatusCode: statusCode,
		Detail:     detail,
	}

	if len(detail) == 0 {
		zerr.Body = truncate(string(body))
	}

	return zerr
}

func classify(statusCode int, explicit zen.ErrorCode, body string) zen.ErrorCode {
	// 401 always drives the session retry, whatever the body says.
	if statusCode == http.StatusUnauthorized {
		return zen.CodeAuthorization
	}

	if refines(statusCode, explicit) {
		return explicit
	}

	switch statusCode {
	case http.StatusNotFound:
		return match(notFoundMarkers, body, zen.CodeNotFound)
	case http.StatusConflict:
		return match(conflictMarkers, body, zen.CodeConflict)
	case http.StatusUnprocessableEntity:
		return zen.CodeValidation
	case http.StatusInternalServerError:
		return zen.CodeServerFault
	default:
		return zen.CodeUnexpectedStatus
	}
}

// refines reports whether an explicit body code narrows the status family
// instead of contradicting it.
func refines(statusCode int, explicit zen.ErrorCode) bool {
	if !explicit.Known() {
		return false
	}

	switch statusCode {
	case http.StatusNotFound:
		return explicit.Is(zen.CodeNotFound)
	case http.StatusConflict:
		return explicit.Is(zen.CodeConflict)
	case http.StatusUnprocessableEntity:
		return explicit == zen.CodeValidation
	case http.StatusInternalServerError:
		return explicit == zen.CodeServerFault
	default:
		return explicit == zen.CodeUnexpectedStatus
	}
}

func match(markers []marker, body string, fallback zen.ErrorCode) zen.ErrorCode {
	for _, m := range markers {
		if strings.Contains(body, m.name) {
			return m.code
		}
	}

	return fallback
}

// decodeErrorBody extracts the detail list and an explicit error code. A
// body that is not a JSON object yields neither.
func decodeErrorBody(body []byte) ([]string, zen.ErrorCode) {
	var payload errorBody

	err := json.Unmarshal(body, &payload)
	if err != nil {
		return nil, ""
	}

	return decodeDetail(payload.Detail), payload.Code
}

func decodeDetail(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var text string
	if json.Unmarshal(raw, &text) == nil {
		return []string{text}
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return []string{compact(raw)}
	}

	detail := make([]string, 0, len(items))

	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			detail = append(detail, s)
		} else {
			detail = append(detail, compact(item))
		}
	}

	return detail
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer

	if json.Compact(&buf, raw) != nil {
		return string(raw)
	}

	return buf.String()
}

const maxErrorBody = 4096

func truncate(body string) string {
	if len(body) <= maxErrorBody {
		return body
	}

	return body[:maxErrorBody] + "..."
}
