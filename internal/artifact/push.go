package artifact

import (
	"github.com/pkg/errors"
)

// 读取config指定的模型文件，校验通过后以bundle为名保存到注册表。校验失败时不写入任何记录
func Push(registry Registry, bundle string, config *Config) error {
	config.Source = SourceFile
	if err := config.Complete(); err != nil {
		return err
	}

	source, err := NewSource(config)
	if err != nil {
		return err
	}
	defer source.Close()

	if _, err = Load(source, config.FeatureNames); err != nil {
		return errors.Wrap(err, "模型校验失败，未保存")
	}

	payloads := make(map[Kind][]byte, len(Kinds))
	for _, kind := range Kinds {
		if payloads[kind], err = source.Read(kind); err != nil {
			return err
		}
	}
	return registry.SaveBundle(bundle, payloads)
}
