package artifact

import (
	"fmt"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log"
	"os"
)

var ErrArtifactNotFound = errors.New("注册表中不存在该模型文件")

// 保存在数据库中的模型文件
type Registry interface {
	DB() *gorm.DB
	Save(bundle string, kind Kind, payload []byte) error
	// 在同一个事务中保存一个模型的全部文件，任何一个失败时都不修改已有的记录
	SaveBundle(bundle string, payloads map[Kind][]byte) error
	Query(bundle string, kind Kind) ([]byte, error)
	QueryBundles() ([]string, error)
	Close() error
}

type registryImpl struct {
	db *gorm.DB
}

var _ Registry = &registryImpl{}

func OpenRegistry(driver, dsn string) (Registry, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动：%q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	err = db.AutoMigrate(&ArtifactDO{})
	if err != nil {
		if s, e := db.DB(); e == nil {
			_ = s.Close()
		}
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &registryImpl{db: db}, nil
}

func (r *registryImpl) DB() *gorm.DB {
	return r.db
}

func (r *registryImpl) Save(bundle string, kind Kind, payload []byte) error {
	return save(r.db, bundle, kind, payload)
}

func (r *registryImpl) SaveBundle(bundle string, payloads map[Kind][]byte) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, kind := range Kinds {
			if err := save(tx, bundle, kind, payloads[kind]); err != nil {
				return err
			}
		}
		return nil
	})
}

func save(db *gorm.DB, bundle string, kind Kind, payload []byte) error {
	if bundle == "" {
		return fmt.Errorf("bundle名称不能为空")
	}
	if len(payload) == 0 {
		return fmt.Errorf("%s的内容为空", kind)
	}

	dest := &ArtifactDO{}
	err := db.Where(&ArtifactDO{Bundle: bundle, Kind: kind}).First(dest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(err, "查询bundle为%s的%s时出错", bundle, kind)
	}

	dest.Bundle = bundle
	dest.Kind = kind
	dest.Payload = payload
	if err = db.Save(dest).Error; err != nil {
		return errors.Wrapf(err, "保存bundle为%s的%s时出错", bundle, kind)
	}
	return nil
}

func (r *registryImpl) Query(bundle string, kind Kind) ([]byte, error) {
	record := &ArtifactDO{}
	err := r.db.Where(&ArtifactDO{Bundle: bundle, Kind: kind}).First(record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrArtifactNotFound, "bundle为%s，类型为%s", bundle, kind)
	} else if err != nil {
		return nil, errors.Wrapf(err, "查询bundle为%s的%s时出错", bundle, kind)
	}
	return record.Payload, nil
}

func (r *registryImpl) QueryBundles() ([]string, error) {
	bundles := make([]string, 0)
	err := r.db.Model(&ArtifactDO{}).Distinct("bundle").Order("bundle asc").Pluck("bundle", &bundles).Error
	if err != nil {
		return nil, errors.Wrap(err, "查询bundle列表时出错")
	}
	return bundles, nil
}

func (r *registryImpl) Close() error {
	s, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "获取数据库连接出错")
	}
	return s.Close()
}
