package errdefs

import (
	"errors"
	"fmt"
)

// 领域错误，调用方使用 errors.Is 判断
var (
	ErrDuplicateRelease     = errors.New("release already recorded")
	ErrUnknownComic         = errors.New("unknown comic")
	ErrStorageFailure       = errors.New("storage failure")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidImage         = errors.New("invalid image data")
	ErrInvalidComic         = errors.New("invalid comic")
	ErrSlugLocked           = errors.New("slug is referenced by releases and cannot change")
	ErrConflict             = errors.New("already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
)

// StorageError 存储读写失败，携带操作和路径
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrStorageFailure) 成立
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// NewStorageError 包装底层存储错误
func NewStorageError(op, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}

// IntegrityError 引用仍存在时拒绝删除
type IntegrityError struct {
	Entity     string
	ID         uint
	References int64
}

func (e *IntegrityError) Error() string {
	if e.References == 0 {
		return fmt.Sprintf("%s %d is still referenced", e.Entity, e.ID)
	}
	return fmt.Sprintf("%s %d is still referenced by %d release(s)", e.Entity, e.ID, e.References)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}
