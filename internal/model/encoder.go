package model

import (
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
)

// 将类别值还原为应用名称
type LabelEncoder struct {
	classes []string
}

type labelEncoderFile struct {
	Classes []string `json:"classes"`
}

func ParseLabelEncoder(data []byte) (*LabelEncoder, error) {
	file := &labelEncoderFile{}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, errors.Wrap(err, "解析label encoder json失败")
	}
	if len(file.Classes) == 0 {
		return nil, fmt.Errorf("label encoder没有类别")
	}
	return &LabelEncoder{classes: file.Classes}, nil
}

func NewLabelEncoder(classes []string) *LabelEncoder {
	return &LabelEncoder{classes: classes}
}

func (l *LabelEncoder) InverseTransform(class int) (string, error) {
	if class < 0 || class >= len(l.classes) {
		return "", fmt.Errorf("类别值%d不在label encoder范围[0,%d)内", class, len(l.classes))
	}
	return l.classes[class], nil
}

func (l *LabelEncoder) Classes() []string {
	return l.classes
}
