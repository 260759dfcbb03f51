package model

// Prediction : результат инференса модели по загруженному снимку.
// Кэшируется в Redis по SHA-256 изображения.
type Prediction struct {
	Class      string  `json:"predicted_class"`
	Confidence float64 `json:"confidence"`
	ImageKey   string  `json:"image_key"`
}
