package artifact

import (
	"fmt"
)

// 构成一个模型的三个文件之一
type Kind string

const (
	KindClassifier   = Kind("classifier")
	KindScaler       = Kind("scaler")
	KindLabelEncoder = Kind("label_encoder")
)

var Kinds = []Kind{KindClassifier, KindScaler, KindLabelEncoder}

type SourceType string

const (
	SourceFile     = SourceType("file")
	SourceDatabase = SourceType("database")
)

const (
	DefaultClassifierPath   = "rf_model.json"
	DefaultScalerPath       = "scaler.json"
	DefaultLabelEncoderPath = "label_encoder.json"
	DefaultDatabaseDriver   = "mysql"
	DefaultBundle           = "default"
)

type Config struct {
	Source           SourceType     `json:"source"`
	ClassifierPath   string         `json:"classifierPath"`
	ScalerPath       string         `json:"scalerPath"`
	LabelEncoderPath string         `json:"labelEncoderPath"`
	Database         DatabaseConfig `json:"database"`
	// 特征名称及其顺序。为空时使用scaler中记录的特征名称
	FeatureNames []string `json:"featureNames"`
}

type DatabaseConfig struct {
	Driver string `json:"driver"` // mysql或sqlite
	DSN    string `json:"-"`
	Bundle string `json:"bundle"` // 模型在注册表中的名称
}

func (c *Config) Complete() error {
	if c.Source == "" {
		c.Source = SourceFile
	}

	switch c.Source {
	case SourceFile:
		if c.ClassifierPath == "" {
			c.ClassifierPath = DefaultClassifierPath
		}
		if c.ScalerPath == "" {
			c.ScalerPath = DefaultScalerPath
		}
		if c.LabelEncoderPath == "" {
			c.LabelEncoderPath = DefaultLabelEncoderPath
		}
	case SourceDatabase:
		if c.Database.Driver == "" {
			c.Database.Driver = DefaultDatabaseDriver
		}
		if c.Database.Bundle == "" {
			c.Database.Bundle = DefaultBundle
		}
		if c.Database.DSN == "" {
			return fmt.Errorf("使用数据库读取模型时必须指定DSN")
		}
	default:
		return fmt.Errorf("不支持的模型来源：%q", c.Source)
	}
	return nil
}

func (c *Config) path(kind Kind) string {
	switch kind {
	case KindClassifier:
		return c.ClassifierPath
	case KindScaler:
		return c.ScalerPath
	case KindLabelEncoder:
		return c.LabelEncoderPath
	default:
		return ""
	}
}
