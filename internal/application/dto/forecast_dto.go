package dto

// MonthlyDemandDTO demanda de un mes calendario. Actual es nil en los meses
// proyectados; Predicted es nil en los meses históricos.
type MonthlyDemandDTO struct {
	Month     string `json:"month"` // Jan, Feb, ...
	Year      int    `json:"year"`
	Actual    *int   `json:"actual"`
	Predicted *int   `json:"predicted"`
}

// DemandForecastDTO respuesta del estimador de demanda: serie histórica
// mensual, proyección a 3 meses y campos de predicción persistidos.
type DemandForecastDTO struct {
	Historical    []MonthlyDemandDTO `json:"historical"`
	Predictions   PredictionsDTO     `json:"predictions"`
	CurrentStock  int                `json:"current_stock"`
	AverageDemand float64            `json:"average_demand"`
}
