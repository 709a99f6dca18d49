package responses

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// --- Structs for Standardized JSON Response Bodies ---

// jsonSuccessResponse is the structure for successful responses.
type jsonSuccessResponse struct {
	Status  string      `json:"status"`            // Typically "success"
	Message string      `json:"message,omitempty"` // Optional descriptive message
	Data    interface{} `json:"data,omitempty"`    // The actual data payload
}

// jsonErrorResponse is the structure for error responses.
type jsonErrorResponse struct {
	Status  string      `json:"status"`           // "error" or "fail"
	Message string      `json:"message"`          // Error message
	Code    int         `json:"code"`             // HTTP status code
	ErrCode string      `json:"err_code,omitempty"` // Machine-readable error code, e.g. GUEST_NOT_YET_OPEN
	Errors  interface{} `json:"errors,omitempty"` // Detailed errors, e.g., for validation
}

// jsonPaginatedResponse is the structure for responses containing paginated data.
type jsonPaginatedResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination pagination  `json:"pagination"`
}

type pagination struct {
	TotalItems   int64 `json:"total_items"`
	TotalPages   int   `json:"total_pages"`
	CurrentPage  int   `json:"current_page"`
	PageSize     int   `json:"page_size"`
	HasNextPage  bool  `json:"has_next_page"`
	HasPrevPage  bool  `json:"has_prev_page"`
	NextPage     *int  `json:"next_page,omitempty"`
	PreviousPage *int  `json:"previous_page,omitempty"`
}

// --- Public Response Helper Functions ---

// SuccessResponse sends a standardized success JSON response.
func SuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, jsonSuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// MessageResponse sends a success response carrying only a message.
func MessageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, jsonSuccessResponse{
		Status:  "success",
		Message: message,
	})
}

// ErrorResponse sends a standardized error JSON response.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	statusText := "error"
	if statusCode >= http.StatusInternalServerError {
		statusText = "fail" // Differentiate client errors from server failures
	}
	c.AbortWithStatusJSON(statusCode, jsonErrorResponse{
		Status:  statusText,
		Message: message,
		Code:    statusCode,
	})
}

// ErrorResponseWithCode sends an error response carrying a machine-readable
// error code alongside the message, for errors the client must branch on.
func ErrorResponseWithCode(c *gin.Context, statusCode int, message, errCode string) {
	statusText := "error"
	if statusCode >= http.StatusInternalServerError {
		statusText = "fail"
	}
	c.AbortWithStatusJSON(statusCode, jsonErrorResponse{
		Status:  statusText,
		Message: message,
		Code:    statusCode,
		ErrCode: errCode,
	})
}

// formatValidationErrors converts validator.ValidationErrors into a map.
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	formattedErrors := make(map[string]string)
	for _, err := range errs {
		fieldKey := strings.ToLower(err.Field())
		var errMsg string
		switch err.Tag() {
		case "required":
			errMsg = fmt.Sprintf("The %s field is required.", err.Field())
		case "min":
			errMsg = fmt.Sprintf("The %s field must be at least %s.", err.Field(), err.Param())
		case "max":
			errMsg = fmt.Sprintf("The %s field may not be greater than %s.", err.Field(), err.Param())
		case "email":
			errMsg = fmt.Sprintf("The %s field must be a valid email address.", err.Field())
		case "oneof":
			errMsg = fmt.Sprintf("The %s field must be one of: %s.", err.Field(), err.Param())
		case "gt":
			errMsg = fmt.Sprintf("The %s field must be greater than %s.", err.Field(), err.Param())
		default:
			errMsg = fmt.Sprintf("The %s field is invalid (%s).", err.Field(), err.Tag())
		}
		formattedErrors[fieldKey] = errMsg
	}
	return formattedErrors
}

// ValidationErrorResponse sends a 400 with per-field validation errors when
// the bind error is a validator error, or a generic message otherwise.
func ValidationErrorResponse(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, jsonErrorResponse{
			Status:  "error",
			Message: "Validation failed",
			Code:    http.StatusBadRequest,
			Errors:  formatValidationErrors(validationErrs),
		})
		return
	}
	ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
}

// PaginatedResponse sends a success response with pagination metadata.
func PaginatedResponse(c *gin.Context, statusCode int, data interface{}, totalItems int64, currentPage, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
	}

	p := pagination{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		HasNextPage: currentPage < totalPages,
		HasPrevPage: currentPage > 1,
	}
	if p.HasNextPage {
		next := currentPage + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := currentPage - 1
		p.PreviousPage = &prev
	}

	c.JSON(statusCode, jsonPaginatedResponse{
		Status:     "success",
		Data:       data,
		Pagination: p,
	})
}
