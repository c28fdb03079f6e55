package apperror

import (
	"encoding/json"
	"net/http"
)

// Response - тело ответа с ошибкой
type Response struct {
	Error   string                 `json:"error"`
	Errors  []FieldError           `json:"errors,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Detail  string                 `json:"detail,omitempty"`
}

// Render пишет ошибку в ответ. Текст внутренней причины попадает в detail
// только при exposeDetail (вне production).
func Render(w http.ResponseWriter, err error, exposeDetail bool) {
	se := From(err)
	body := Response{
		Error:   se.Message,
		Errors:  se.Fields,
		Details: se.Details,
	}
	if exposeDetail && se.Code == CodeInternal && se.Err != nil {
		body.Detail = se.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}
