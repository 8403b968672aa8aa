package core

type Priority string

const (
	PriorityHigh   = Priority("HIGH")
	PriorityMedium = Priority("MEDIUM")
	PriorityLow    = Priority("LOW")
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// 一条流量样本的特征，键为特征名称
type Features map[string]float64

type Classification struct {
	Application     string   `json:"application"`
	Confidence      float64  `json:"confidence"`
	Priority        Priority `json:"priority"`
	InferenceTimeMs float64  `json:"inference_time_ms"`
}

const HealthyStatus = "healthy"

type HealthStatus struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
