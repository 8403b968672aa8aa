package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// 解析请求体。请求体必须是JSON对象，值的类型在构造向量时再检查
func ParseFeatures(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("请求体为空")
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("请求体必须是JSON对象")
	}

	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("请求体不是合法的JSON：%v", err)
	}
	return raw, nil
}

// 按featureNames的顺序构造特征向量。缺少的特征为0，未知的键忽略
func BuildVector(featureNames []string, raw map[string]json.RawMessage) ([]float64, error) {
	vector := make([]float64, len(featureNames))
	for i, name := range featureNames {
		value, ok := raw[name]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(value, &f); err != nil || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, fmt.Errorf("特征%s的值必须是数字，现在为%s", name, string(value))
		}
		vector[i] = f
	}
	return vector, nil
}
