package dto

// ErrorResponse respuesta de error estructurada de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
