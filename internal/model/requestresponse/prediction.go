package requestresponse

// PredictionResponse : результат распознавания болезни по снимку
type PredictionResponse struct {
	PredictedClass string  `json:"predicted_class" example:"Tomato___Late_blight"`
	Confidence     float64 `json:"confidence" example:"0.97"`
	ImageURL       string  `json:"image_url,omitempty"`
	Cached         bool    `json:"cached" example:"false"`
	Success        bool    `json:"success" example:"true"`
}
