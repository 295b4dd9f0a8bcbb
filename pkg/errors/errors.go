package errors

import "errors"

// ErrStatusConflict 状态比较交换失败：记录已被其他操作处理
var ErrStatusConflict = errors.New("记录状态已被其他操作修改")

// ErrStoreUnavailable 存储暂不可用（瞬时错误，由调用方决定是否重试）
var ErrStoreUnavailable = errors.New("存储服务暂不可用")
