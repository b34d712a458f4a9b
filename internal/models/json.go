package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON 类型定义，用于存储多语言内容与键值配置
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported JSON column type")
	}
	if len(bytes) == 0 {
		*j = make(JSON)
		return nil
	}
	return json.Unmarshal(bytes, j)
}
