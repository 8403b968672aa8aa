package artifact

import (
	"fmt"
	"github.com/packagewjx/traffic-classifier/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 推理需要的全部模型。启动时读取一次，之后只读
type Bundle struct {
	FeatureNames []string
	Scaler       model.Scaler
	Classifier   model.Classifier
	Encoder      *model.LabelEncoder
}

// 检查三个模型与特征名称是否一致。featureNames为空时使用scaler记录的特征名称
func NewBundle(featureNames []string, scaler model.Scaler, classifier model.Classifier,
	encoder *model.LabelEncoder) (*Bundle, error) {
	if scaler == nil || classifier == nil || encoder == nil {
		return nil, fmt.Errorf("模型不完整")
	}

	scalerNames := scaler.FeatureNames()
	if len(featureNames) == 0 {
		featureNames = scalerNames
	}
	if len(featureNames) == 0 {
		return nil, fmt.Errorf("没有配置特征名称，scaler中也没有记录特征名称")
	}

	seen := make(map[string]struct{}, len(featureNames))
	for i, name := range featureNames {
		if name == "" {
			return nil, fmt.Errorf("第%d个特征名称为空", i)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("特征名称%q重复", name)
		}
		seen[name] = struct{}{}
	}

	if len(featureNames) != scaler.NumFeatures() {
		return nil, fmt.Errorf("特征名称有%d个，scaler需要%d个", len(featureNames), scaler.NumFeatures())
	}
	if len(featureNames) != classifier.NumFeatures() {
		return nil, fmt.Errorf("特征名称有%d个，分类器需要%d个", len(featureNames), classifier.NumFeatures())
	}
	if scalerNames != nil {
		for i := range featureNames {
			if featureNames[i] != scalerNames[i] {
				return nil, fmt.Errorf("第%d个特征名称为%q，与scaler记录的%q不一致", i, featureNames[i], scalerNames[i])
			}
		}
	}

	numLabel := len(encoder.Classes())
	for _, class := range classifier.Classes() {
		if class < 0 || class >= numLabel {
			return nil, fmt.Errorf("分类器的类别值%d超出label encoder范围[0,%d)", class, numLabel)
		}
	}

	return &Bundle{
		FeatureNames: featureNames,
		Scaler:       scaler,
		Classifier:   classifier,
		Encoder:      encoder,
	}, nil
}

// 从source读取并解析三个模型文件
func Load(source Source, featureNames []string) (*Bundle, error) {
	data, err := source.Read(KindClassifier)
	if err != nil {
		return nil, err
	}
	classifier, err := model.ParseClassifier(data)
	if err != nil {
		return nil, errors.Wrap(err, "分类器有误")
	}

	data, err = source.Read(KindScaler)
	if err != nil {
		return nil, err
	}
	scaler, err := model.ParseScaler(data)
	if err != nil {
		return nil, errors.Wrap(err, "scaler有误")
	}

	data, err = source.Read(KindLabelEncoder)
	if err != nil {
		return nil, err
	}
	encoder, err := model.ParseLabelEncoder(data)
	if err != nil {
		return nil, errors.Wrap(err, "label encoder有误")
	}

	return NewBundle(featureNames, scaler, classifier, encoder)
}

func LoadFromConfig(config *Config, logger *zap.Logger) (*Bundle, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}

	source, err := NewSource(config)
	if err != nil {
		return nil, errors.Wrap(err, "打开模型来源失败")
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("关闭模型来源失败", zap.Error(err))
		}
	}()

	switch config.Source {
	case SourceFile:
		logger.Info("从文件读取模型",
			zap.String("classifier", config.ClassifierPath),
			zap.String("scaler", config.ScalerPath),
			zap.String("labelEncoder", config.LabelEncoderPath))
	case SourceDatabase:
		logger.Info("从数据库读取模型",
			zap.String("driver", config.Database.Driver),
			zap.String("bundle", config.Database.Bundle))
	}

	bundle, err := Load(source, config.FeatureNames)
	if err != nil {
		return nil, errors.Wrap(err, "读取模型失败")
	}

	logger.Info("模型读取完成",
		zap.Int("features", len(bundle.FeatureNames)),
		zap.Strings("labels", bundle.Encoder.Classes()),
		zap.Int("estimators", bundle.Classifier.NumEstimators()),
		zap.String("scaler", string(bundle.Scaler.Type())))
	return bundle, nil
}
