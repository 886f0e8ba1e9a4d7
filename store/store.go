// Package store 提供 core 存储接口的内存与 Redis 实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store / core.KeyValueStore / core.PreferenceStore 等接口。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	var kv core.KeyValueStore = store.NewMemoryStore()
package store

import "github.com/federico-pizz/piranha2/core"

// ErrNotFound 是 core.ErrStoreNotFound 的包内别名。
var ErrNotFound = core.ErrStoreNotFound
