package microstatus

import (
	"context"
	"encoding/json"
	"fmt"
)

// ParseStatusResponse decodes the status endpoint's JSON body. Values are
// returned exactly as sent; unlike the dashboard table they are not trimmed
// or replaced with NotAvailable. A null value, sent before the second action
// of the day, reads as empty. Only a missing key is an unexpected response.
func ParseStatusResponse(body string) (AttendanceLog, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return AttendanceLog{}, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}

	timeIn, err := statusField(fields, "TimeIn", body)
	if err != nil {
		return AttendanceLog{}, err
	}
	timeOut, err := statusField(fields, "TimeOut", body)
	if err != nil {
		return AttendanceLog{}, err
	}

	return AttendanceLog{TimeIn: timeIn, TimeOut: timeOut}, nil
}

func statusField(fields map[string]json.RawMessage, key, body string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s in %q", ErrUnexpectedResponse, key, body)
	}

	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnexpectedResponse, key, err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// APIRecorder posts the status change straight to the portal endpoint from
// inside the page, and gets the day's log back in the same response.
type APIRecorder struct {
	Endpoint string
	Timeouts Timeouts
}

func (r *APIRecorder) Record(ctx context.Context, session *Session, direction Direction) (Result, error) {
	done, err := checkRecordable(ctx, session, direction, r.Timeouts)
	if err != nil {
		return Result{}, err
	}
	if done != nil {
		return *done, nil
	}

	body, err := session.Page.PostForm(r.Endpoint, map[string]string{
		"stat": direction.StatusCode(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("status endpoint: %w", err)
	}

	log, err := ParseStatusResponse(body)
	if err != nil {
		return Result{}, err
	}

	return Result{Success: true, Log: &log}, nil
}
