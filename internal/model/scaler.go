package model

import (
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"math"
)

// 特征标准化
type Scaler interface {
	Transform(x []float64) ([]float64, error)
	NumFeatures() int
	// 训练时使用的特征名称，没有记录时为nil
	FeatureNames() []string
	Type() ScalerType
}

type ScalerType string

const (
	StandardScaler = ScalerType("standard")
	MinMaxScaler   = ScalerType("minmax")
)

type scalerFile struct {
	Type         ScalerType `json:"type"`
	Mean         []float64  `json:"mean"`
	Min          []float64  `json:"min"`
	Scale        []float64  `json:"scale"`
	FeatureNames []string   `json:"feature_names"`
}

func ParseScaler(data []byte) (Scaler, error) {
	file := &scalerFile{}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, "解析scaler json失败")
	}

	switch file.Type {
	case StandardScaler:
		return newStandard(file)
	case MinMaxScaler:
		return newMinMax(file)
	default:
		return nil, fmt.Errorf("不支持的scaler类型：%q", file.Type)
	}
}

// (x - mean) / scale
type standard struct {
	mean  []float64
	scale []float64
	names []string
}

func newStandard(file *scalerFile) (*standard, error) {
	n := len(file.Mean)
	if len(file.Scale) > n {
		n = len(file.Scale)
	}
	if n == 0 {
		n = len(file.FeatureNames)
	}
	if n == 0 {
		return nil, fmt.Errorf("无法确定scaler的特征数量")
	}

	s := &standard{
		mean:  make([]float64, n),
		scale: make([]float64, n),
		names: file.FeatureNames,
	}
	// mean为空时相当于with_mean=False
	if file.Mean != nil {
		if len(file.Mean) != n {
			return nil, fmt.Errorf("mean长度为%d，应为%d", len(file.Mean), n)
		}
		copy(s.mean, file.Mean)
	}
	for i := range s.scale {
		s.scale[i] = 1
	}
	if file.Scale != nil {
		if len(file.Scale) != n {
			return nil, fmt.Errorf("scale长度为%d，应为%d", len(file.Scale), n)
		}
		for i, v := range file.Scale {
			// 方差为0的特征不缩放
			if v != 0 {
				s.scale[i] = v
			}
		}
	}
	if err := checkNames(s.names, n); err != nil {
		return nil, err
	}
	if err := checkFinite("mean", s.mean); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", s.scale); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *standard) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("特征数量为%d，scaler需要%d个", len(x), len(s.mean))
	}
	result := make([]float64, len(x))
	for i, v := range x {
		result[i] = (v - s.mean[i]) / s.scale[i]
	}
	return result, nil
}

func (s *standard) NumFeatures() int {
	return len(s.mean)
}

func (s *standard) FeatureNames() []string {
	return s.names
}

func (s *standard) Type() ScalerType {
	return StandardScaler
}

// x * scale + min
type minMax struct {
	min   []float64
	scale []float64
	names []string
}

func newMinMax(file *scalerFile) (*minMax, error) {
	if len(file.Scale) == 0 {
		return nil, fmt.Errorf("minmax scaler缺少scale")
	}
	if len(file.Min) != len(file.Scale) {
		return nil, fmt.Errorf("min长度为%d，与scale长度%d不一致", len(file.Min), len(file.Scale))
	}
	if err := checkNames(file.FeatureNames, len(file.Scale)); err != nil {
		return nil, err
	}
	if err := checkFinite("min", file.Min); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", file.Scale); err != nil {
		return nil, err
	}
	return &minMax{
		min:   file.Min,
		scale: file.Scale,
		names: file.FeatureNames,
	}, nil
}

func (m *minMax) Transform(x []float64) ([]float64, error) {
	if len(x) != len(m.scale) {
		return nil, fmt.Errorf("特征数量为%d，scaler需要%d个", len(x), len(m.scale))
	}
	result := make([]float64, len(x))
	for i, v := range x {
		result[i] = v*m.scale[i] + m.min[i]
	}
	return result, nil
}

func (m *minMax) NumFeatures() int {
	return len(m.scale)
}

func (m *minMax) FeatureNames() []string {
	return m.names
}

func (m *minMax) Type() ScalerType {
	return MinMaxScaler
}

func checkNames(names []string, n int) error {
	if names != nil && len(names) != n {
		return fmt.Errorf("feature_names长度为%d，应为%d", len(names), n)
	}
	return nil
}

func checkFinite(field string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s的第%d个值非法：%v", field, i, v)
		}
	}
	return nil
}
