package domain

// FileInfo describes the uploaded file in a prediction response.
type FileInfo struct {
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	SizeBytes   int     `json:"size_bytes"`
	SizeKB      float64 `json:"size_kb"`
}

// PredictionMetadata carries the fixed service metadata of a prediction.
type PredictionMetadata struct {
	PredictionID string `json:"prediction_id"`
	ModelVersion string `json:"model_version"`
	Timestamp    int64  `json:"timestamp"` // Unix seconds
	APIVersion   string `json:"api_version"`
}

// Prediction is the mock classification returned for an accepted upload.
type Prediction struct {
	Success             bool               `json:"success"`
	CloudType           string             `json:"cloud_type"`
	Abbreviation        string             `json:"abbreviation"`
	Confidence          float64            `json:"confidence"`
	Description         string             `json:"description"`
	WeatherSignificance string             `json:"weather_significance"`
	Altitude            string             `json:"altitude"`
	Appearance          string             `json:"appearance"`
	ProcessingTime      float64            `json:"processing_time"` // seconds
	FileInfo            FileInfo           `json:"file_info"`
	Metadata            PredictionMetadata `json:"metadata"`
}

// NewPrediction combines a catalog record with the per-request values.
func NewPrediction(ct CloudType, confidence, processingTime float64, info FileInfo, meta PredictionMetadata) Prediction {
	return Prediction{
		Success:             true,
		CloudType:           ct.Name,
		Abbreviation:        ct.Abbreviation,
		Confidence:          confidence,
		Description:         ct.Description,
		WeatherSignificance: ct.WeatherSignificance,
		Altitude:            ct.Altitude,
		Appearance:          ct.Appearance,
		ProcessingTime:      processingTime,
		FileInfo:            info,
		Metadata:            meta,
	}
}

// ModelInfo describes the mock model served by the API.
type ModelInfo struct {
	ModelVersion    string          `json:"model_version"`
	APIVersion      string          `json:"api_version"`
	Mock            bool            `json:"mock"`
	Classes         []string        `json:"classes"`
	ConfidenceRange [2]float64      `json:"confidence_range"`
	ProcessingDelay ProcessingDelay `json:"processing_delay"`
}

// ProcessingDelay is the artificial delay range in seconds.
type ProcessingDelay struct {
	MinSeconds float64 `json:"min_seconds"`
	MaxSeconds float64 `json:"max_seconds"`
}
