package resterr

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrorModel is the generic error body returned by every catalog endpoint
// except the token endpoint, found under its "error" key.
type ErrorModel struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// OAuthErrorResponse is the RFC 6749 section 5.2 error body.
type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

var oauthErrorCodes = map[string]bool{
	"invalid_request":        true,
	"invalid_client":         true,
	"invalid_grant":          true,
	"unauthorized_client":    true,
	"unsupported_grant_type": true,
	"invalid_scope":          true,
}

// shapeError reports a syntactically valid body missing required fields.
type shapeError struct {
	detail string
}

func (e *shapeError) Error() string { return e.detail }

func (m ErrorModel) message() string {
	return m.Type + ": " + m.Message
}

func (r OAuthErrorResponse) message() string {
	msg := r.Error
	if r.ErrorDescription != "" {
		msg += ": " + r.ErrorDescription
	}
	if r.ErrorURI != "" {
		msg += " (" + r.ErrorURI + ")"
	}
	return msg
}

// parseErrorModel decodes a generic error body. Fields are decoded through
// pointers first so absent and zero values can be told apart.
func parseErrorModel(body []byte) (ErrorModel, error) {
	var raw struct {
		Error *struct {
			Message *string `json:"message"`
			Type    *string `json:"type"`
			Code    *int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrorModel{}, &shapeError{detail: typeErr.Error()}
		}
		return ErrorModel{}, err
	}

	var missing []string
	switch {
	case raw.Error == nil:
		missing = append(missing, "error: field required")
	default:
		if raw.Error.Message == nil {
			missing = append(missing, "error.message: field required")
		}
		if raw.Error.Type == nil {
			missing = append(missing, "error.type: field required")
		}
		if raw.Error.Code == nil {
			missing = append(missing, "error.code: field required")
		}
	}
	if len(missing) > 0 {
		return ErrorModel{}, &shapeError{detail: strings.Join(missing, ", ")}
	}

	return ErrorModel{Message: *raw.Error.Message, Type: *raw.Error.Type, Code: *raw.Error.Code}, nil
}

func parseOAuthError(body []byte) (OAuthErrorResponse, error) {
	var raw struct {
		Error            *string `json:"error"`
		ErrorDescription *string `json:"error_description"`
		ErrorURI         *string `json:"error_uri"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return OAuthErrorResponse{}, &shapeError{detail: typeErr.Error()}
		}
		return OAuthErrorResponse{}, err
	}
	if raw.Error == nil {
		return OAuthErrorResponse{}, &shapeError{detail: "error: field required"}
	}
	if !oauthErrorCodes[*raw.Error] {
		return OAuthErrorResponse{}, &shapeError{detail: "error: unexpected value " + *raw.Error}
	}

	resp := OAuthErrorResponse{Error: *raw.Error}
	if raw.ErrorDescription != nil {
		resp.ErrorDescription = *raw.ErrorDescription
	}
	if raw.ErrorURI != nil {
		resp.ErrorURI = *raw.ErrorURI
	}
	return resp, nil
}
