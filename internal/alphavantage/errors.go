package alphavantage

import "fmt"

// ErrUpstreamHTTP is returned when Alpha Vantage answers with a non-200
// status.
type ErrUpstreamHTTP struct {
	Status int
}

func (e *ErrUpstreamHTTP) Error() string {
	return fmt.Sprintf("alpha vantage returned HTTP %d", e.Status)
}

// ErrBadPayload is returned when a response body is not the JSON document
// the function promises (missing root key, non-JSON body).
type ErrBadPayload struct {
	Function Function
	Detail   string
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("malformed %s payload: %s", e.Function, e.Detail)
}
