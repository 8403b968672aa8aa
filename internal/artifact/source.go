package artifact

import (
	"fmt"
	"github.com/pkg/errors"
	"os"
)

// 读取模型文件的来源
type Source interface {
	Read(kind Kind) ([]byte, error)
	Close() error
}

func NewSource(config *Config) (Source, error) {
	switch config.Source {
	case SourceFile:
		return &fileSource{config: config}, nil
	case SourceDatabase:
		registry, err := OpenRegistry(config.Database.Driver, config.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &registrySource{registry: registry, bundle: config.Database.Bundle}, nil
	default:
		return nil, fmt.Errorf("不支持的模型来源：%q", config.Source)
	}
}

type fileSource struct {
	config *Config
}

func (f *fileSource) Read(kind Kind) ([]byte, error) {
	path := f.config.path(kind)
	if path == "" {
		return nil, fmt.Errorf("没有配置%s的文件路径", kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "读取%s文件%s失败", kind, path)
	}
	return data, nil
}

func (f *fileSource) Close() error {
	return nil
}

type registrySource struct {
	registry Registry
	bundle   string
}

func (r *registrySource) Read(kind Kind) ([]byte, error) {
	return r.registry.Query(r.bundle, kind)
}

// 模型只在启动时读取一次，读取完毕即可关闭连接
func (r *registrySource) Close() error {
	return r.registry.Close()
}
