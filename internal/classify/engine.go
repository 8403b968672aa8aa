package classify

import (
	"fmt"
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"go.uber.org/zap"
)

type ErrorKind string

const (
	ErrMalformedRequest = ErrorKind("malformed_request") // 请求体不是JSON对象
	ErrInvalidFeature   = ErrorKind("invalid_feature")   // 特征值不是数字
	ErrScaling          = ErrorKind("scaling")
	ErrInference        = ErrorKind("inference")
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Prediction struct {
	Application string
	Confidence  float64
	Priority    core.Priority
}

// 一次分类的结果，Prediction与Err有且只有一个不为nil
type Result struct {
	Prediction *Prediction
	Err        *Error
}

func failed(kind ErrorKind, err error) Result {
	return Result{Err: &Error{Kind: kind, Message: err.Error()}}
}

// 使用同一份只读的模型处理所有请求，可以并发调用
type Engine struct {
	bundle *artifact.Bundle
	logger *zap.Logger
}

func NewEngine(bundle *artifact.Bundle, logger *zap.Logger) *Engine {
	return &Engine{
		bundle: bundle,
		logger: logger,
	}
}

// 对请求体进行分类
func (e *Engine) Classify(body []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("分类时出现panic", zap.Any("panic", r))
			result = failed(ErrInference, fmt.Errorf("分类失败：%v", r))
		}
	}()

	raw, err := ParseFeatures(body)
	if err != nil {
		return failed(ErrMalformedRequest, err)
	}

	x, err := BuildVector(e.bundle.FeatureNames, raw)
	if err != nil {
		return failed(ErrInvalidFeature, err)
	}

	scaled, err := e.bundle.Scaler.Transform(x)
	if err != nil {
		return failed(ErrScaling, err)
	}

	class, confidence, err := e.bundle.Classifier.Predict(scaled)
	if err != nil {
		return failed(ErrInference, err)
	}

	application, err := e.bundle.Encoder.InverseTransform(class)
	if err != nil {
		return failed(ErrInference, err)
	}

	return Result{Prediction: &Prediction{
		Application: application,
		Confidence:  confidence,
		Priority:    PriorityOf(application),
	}}
}
