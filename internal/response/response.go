package response

import (
	"encoding/json"
	"net/http"
	"reflect"
	"runtime/debug"

	"github.com/medideal/records-api/internal/apperror"
	"github.com/rs/zerolog/log"
)

// production toggles verbose error bodies; set once at startup
var production bool

// SetProductionMode controls whether error responses carry stacks
func SetProductionMode(on bool) {
	production = on
}

type successBody struct {
	Status string      `json:"status"`
	Length *int        `json:"length,omitempty"`
	Token  string      `json:"token,omitempty"`
	Data   interface{} `json:"data"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes the uniform success envelope. A 204 always carries
// a null data field; array payloads report their length.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	SuccessWithToken(w, statusCode, data, "")
}

// SuccessWithToken is Success with a bearer token in the envelope
func SuccessWithToken(w http.ResponseWriter, statusCode int, data interface{}, token string) {
	body := successBody{Status: "success", Token: token}

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}

	body.Data = data
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			n := v.Len()
			body.Length = &n
		}
	}

	writeJSON(w, statusCode, body)
}

// Error normalizes err into the taxonomy and writes the error envelope.
// Outside production the body carries the stack and the raw error.
func Error(w http.ResponseWriter, err error) {
	appErr := apperror.Normalize(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unhandled error")
	}

	body := errorBody{
		Status:  appErr.Status(),
		Message: appErr.Message,
	}

	if production {
		// Never leak internals for unrecognized failures
		if appErr.Err != nil && appErr.StatusCode >= http.StatusInternalServerError {
			body.Message = "Something went wrong"
		}
	} else {
		body.Stack = string(debug.Stack())
		if appErr.Err != nil {
			body.Error = appErr.Err.Error()
		} else {
			body.Error = appErr.Message
		}
	}

	writeJSON(w, appErr.StatusCode, body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
