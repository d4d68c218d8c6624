package service

import (
	"errors"
	"fmt"
	"logicfy_backend/internal/util"

	"gorm.io/gorm"
)

// storeErr 记录不存在映射为对应的 NotFound，其余存储错误标记为暂时性故障
func storeErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", util.ErrConflict, err)
	}
	return util.Transient(err)
}
