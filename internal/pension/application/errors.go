package application

import "errors"

var (
	// ErrResetNotAllowed 生产环境禁止清库重建
	ErrResetNotAllowed = errors.New("fixture reset is not allowed in production")
	// ErrProbeFailed 连通性检查失败
	ErrProbeFailed = errors.New("connectivity probe failed")
)
