package catalogtest

import "net/http"

type ErrorResponse struct {
	Error ErrorModel `json:"error"`
}

type ErrorModel struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type OAuthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func errorModel(code int, typ, message string) ErrorModel {
	return ErrorModel{Message: message, Type: typ, Code: code}
}

// Canned error bodies, one per failure the server can produce.
var (
	ErrBadRequest            = errorModel(http.StatusBadRequest, "BadRequestException", "Malformed request")
	ErrNotAuthorized         = errorModel(http.StatusUnauthorized, "NotAuthorizedException", "Not authorized to make this request")
	ErrAuthenticationTimeout = errorModel(419, "AuthenticationTimeoutException", "Credentials have timed out")

	ErrNamespaceNotFound      = errorModel(http.StatusNotFound, "NoSuchNamespaceException", "The given namespace does not exist")
	ErrNamespaceAlreadyExists = errorModel(http.StatusConflict, "AlreadyExistsException", "The given namespace already exists")
	ErrNamespaceNotEmpty      = errorModel(http.StatusConflict, "NamespaceNotEmptyException", "The given namespace is not empty")

	ErrUnprocessableEntityDuplicateKey = errorModel(http.StatusUnprocessableEntity, "UnprocessableEntityException",
		"The request cannot be processed as there is a key present multiple times")

	ErrTableNotFound      = errorModel(http.StatusNotFound, "NoSuchTableException", "The given table does not exist")
	ErrTableAlreadyExists = errorModel(http.StatusConflict, "AlreadyExistsException", "The given table already exists")
	ErrRequirementFailed  = errorModel(http.StatusConflict, "CommitFailedException", "Requirement failed")
)
