package views

import (
	"context"
	"errors"
	"net/http"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
)

// ErrorMessage turns any failure from the backend into one sentence for the
// user. Details stay in the log.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}
	if apiclient.IsNetworkError(err) {
		return "Unable to reach the server. Please try again."
	}

	var apiErr *apiclient.APIError
	if !asAPIError(err, &apiErr) {
		return "Something went wrong. Please try again."
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case apiErr.StatusCode == http.StatusForbidden:
		return "You do not have permission to do that."
	case apiErr.StatusCode == http.StatusNotFound:
		return "The requested item was not found."
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case apiErr.StatusCode >= 500:
		return "The server encountered an error. Please try again."
	case apiErr.Message != "":
		return apiErr.Message
	}
	return "The request could not be completed."
}

func asAPIError(err error, target **apiclient.APIError) bool {
	return errors.As(err, target)
}

func isUnauthorized(err error) bool {
	return apiclient.IsUnauthorized(err)
}

func fieldErrors(err error) map[string]string {
	return apiclient.FieldErrors(err)
}
