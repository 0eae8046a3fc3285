package httpresp

const (
	ErrUnauthorized       = "unauthorized"
	ErrMissingBearerToken = "bearer token is required"
	ErrInvalidToken       = "invalid token"
	ErrNoData             = "No data provided"
	ErrDocumentNotFound   = "Document not found"
	ErrFileNotFound       = "File is not found in the request."
	ErrUnsupportedType    = "Unsupported file type."
	ErrFileTooLarge       = "File is too large."
	ErrNoFileSelected     = "No file selected for uploading"
	ErrInvalidForm        = "Something does not look right. Check your input and try again."
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse is returned by the document helpers on insert; it carries doc_id
// plus an entity-specific alias such as course_id.
type CreatedResponse map[string]any

type StatusResponse struct {
	Status string `json:"status"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Message: message}
}

func NewCreatedResponse(idKey, id string) CreatedResponse {
	return CreatedResponse{"success": true, "doc_id": id, idKey: id}
}

func NewStatusResponse(status string) StatusResponse {
	return StatusResponse{Status: status}
}
