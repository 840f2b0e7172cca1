package api

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ErrorCode represents a standardized error code identifier
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "bad_request"
	ErrCodeUnknownCodec  ErrorCode = "unknown_codec"
	ErrCodeDecode        ErrorCode = "decode_error"
	ErrCodeEncode        ErrorCode = "encode_error"
	ErrCodeInputTooLarge ErrorCode = "input_too_large"
	ErrCodeGeneral       ErrorCode = "general" // Generic fallback error code
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Message string         `json:"error"`
	Code    ErrorCode      `json:"code"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e ErrorResponse) Error() string {
	return e.Message
}

// StatusError is an error with an HTTP status code and message,
// it is parsed on the client-side and not returned from the API
type StatusError struct {
	StatusCode   int    // e.g. 200
	Status       string // e.g. "200 OK"
	ErrorMessage string `json:"error"`
	Code         ErrorCode
	Data         map[string]any
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the gugugaga server logs for details"
	}
}

// DecodeErrorData is the Data carried by a decode_error response. Index is
// set only for batch requests.
type DecodeErrorData struct {
	Codec    string `mapstructure:"codec"`
	Position int    `mapstructure:"position"`
	Excerpt  string `mapstructure:"excerpt"`
	Index    *int   `mapstructure:"index"`
}

// DecodeData converts e.Data into a DecodeErrorData.
func (e StatusError) DecodeData() (*DecodeErrorData, error) {
	if e.Code != ErrCodeDecode {
		return nil, fmt.Errorf("status error has code %q, not %q", e.Code, ErrCodeDecode)
	}

	var data DecodeErrorData
	if err := mapstructure.Decode(e.Data, &data); err != nil {
		return nil, err
	}

	return &data, nil
}
