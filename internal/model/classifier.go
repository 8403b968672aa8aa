package model

import (
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
)

// 分类器接口。输入为标准化后的特征向量
type Classifier interface {
	// 返回各类别的概率，下标与Classes()对应
	PredictProba(x []float64) ([]float64, error)
	// 概率最大的类别值及其概率
	Predict(x []float64) (class int, confidence float64, err error)
	NumFeatures() int
	Classes() []int
	// 集成模型中树的数量，单棵决策树为1
	NumEstimators() int
}

type ClassifierType string

const (
	RandomForest = ClassifierType("random_forest")
	DecisionTree = ClassifierType("decision_tree")
)

type classifierFile struct {
	Type       ClassifierType `json:"type"`
	NumFeature int            `json:"n_features"`
	NumClass   int            `json:"n_classes"`
	Classes    []int          `json:"classes"`
	Trees      []*Tree        `json:"trees"`
}

// 解析分类器文件，根据type字段选择实现
func ParseClassifier(data []byte) (Classifier, error) {
	file := &classifierFile{}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, "解析分类器json失败")
	}

	switch file.Type {
	case RandomForest:
		return newForest(file)
	case DecisionTree:
		if len(file.Trees) != 1 {
			return nil, fmt.Errorf("decision_tree应当只有1棵树，现在有%d棵", len(file.Trees))
		}
		return newForest(file)
	default:
		return nil, fmt.Errorf("不支持的分类器类型：%q", file.Type)
	}
}
