package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageInfo metadatos de paginación.
type PageInfo struct {
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	TotalItems  int `json:"totalItems"`
}
