// Package store 提供用户偏好与搜索历史的键值持久化。
// 存储层是"笨"的：只做按键读写原始 JSON，去重、上限等业务规则
// 由会话控制器负责，这样核心逻辑无需真实存储后端即可测试。
package store

import "errors"

// 持久化键名
const (
	KeySettings = "user_settings"
	KeyHistory  = "search_history"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("store: key not found")

// Store 键值存储接口
type Store interface {
	// Get 读取指定键的原始 JSON，不存在时返回 ErrNotFound
	Get(key string) ([]byte, error)
	// Set 写入指定键的原始 JSON，存在则覆盖
	Set(key string, value []byte) error
}
