package errors

import (
	"errors"
	"fmt"
)

type PoolNotFoundError struct {
	name string
}

func NewPoolNotFoundError(name string) *PoolNotFoundError {
	return &PoolNotFoundError{name: name}
}

func (e *PoolNotFoundError) Error() string {
	return fmt.Sprintf("pool %q not found", e.name)
}

func IsPoolNotFoundError(err error) bool {
	var e *PoolNotFoundError
	return errors.As(err, &e)
}

type PoolExistsError struct {
	name string
}

func NewPoolExistsError(name string) *PoolExistsError {
	return &PoolExistsError{name: name}
}

func (e *PoolExistsError) Error() string {
	return fmt.Sprintf("pool %q already exists", e.name)
}

func IsPoolExistsError(err error) bool {
	var e *PoolExistsError
	return errors.As(err, &e)
}

type InvalidPoolSizeError struct {
	size int
}

func NewInvalidPoolSizeError(size int) *InvalidPoolSizeError {
	return &InvalidPoolSizeError{size: size}
}

func (e *InvalidPoolSizeError) Error() string {
	return fmt.Sprintf("invalid pool size %d", e.size)
}

func IsInvalidPoolSizeError(err error) bool {
	var e *InvalidPoolSizeError
	return errors.As(err, &e)
}

// ThreadLimitError is returned when a pool operation would push the total
// number of workers past the scheduler's limit.
type ThreadLimitError struct {
	requested int
	limit     int
}

func NewThreadLimitError(requested, limit int) *ThreadLimitError {
	return &ThreadLimitError{requested: requested, limit: limit}
}

func (e *ThreadLimitError) Error() string {
	return fmt.Sprintf("requested %d workers exceeds the limit of %d", e.requested, e.limit)
}

func IsThreadLimitError(err error) bool {
	var e *ThreadLimitError
	return errors.As(err, &e)
}

type SchedulerClosedError struct{}

func NewSchedulerClosedError() *SchedulerClosedError {
	return &SchedulerClosedError{}
}

func (e *SchedulerClosedError) Error() string {
	return "scheduler is shutting down"
}

func IsSchedulerClosedError(err error) bool {
	var e *SchedulerClosedError
	return errors.As(err, &e)
}

type AlreadyInitializedError struct{}

func NewAlreadyInitializedError() *AlreadyInitializedError {
	return &AlreadyInitializedError{}
}

func (e *AlreadyInitializedError) Error() string {
	return "scheduler already initialized"
}

func IsAlreadyInitializedError(err error) bool {
	var e *AlreadyInitializedError
	return errors.As(err, &e)
}

type NoPoolAvailableError struct {
	name string
}

func NewNoPoolAvailableError(name string) *NoPoolAvailableError {
	return &NoPoolAvailableError{name: name}
}

func (e *NoPoolAvailableError) Error() string {
	return fmt.Sprintf("no pool available for %q", e.name)
}

func IsNoPoolAvailableError(err error) bool {
	var e *NoPoolAvailableError
	return errors.As(err, &e)
}

// PoolDestroyedError is set on the future of every task still queued when
// its pool is destroyed.
type PoolDestroyedError struct {
	name string
}

func NewPoolDestroyedError(name string) *PoolDestroyedError {
	return &PoolDestroyedError{name: name}
}

func (e *PoolDestroyedError) Error() string {
	return fmt.Sprintf("pool %q destroyed before the task ran", e.name)
}

func IsPoolDestroyedError(err error) bool {
	var e *PoolDestroyedError
	return errors.As(err, &e)
}

type TaskPanicError struct {
	task  string
	value any
}

func NewTaskPanicError(task string, value any) *TaskPanicError {
	return &TaskPanicError{task: task, value: value}
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", e.task, e.value)
}

func IsTaskPanicError(err error) bool {
	var e *TaskPanicError
	return errors.As(err, &e)
}

type UnauthorizedError struct{}

func NewUnauthorizedError() *UnauthorizedError {
	return &UnauthorizedError{}
}

func (e *UnauthorizedError) Error() string {
	return "scheduler API rejected the credentials"
}

func IsUnauthorizedError(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// IsResourceNotFoundError reports whether err means the addressed pool does not exist.
func IsResourceNotFoundError(err error) bool {
	return IsPoolNotFoundError(err) || IsNoPoolAvailableError(err)
}

// IsRejectedError reports whether err means a task was refused without running.
func IsRejectedError(err error) bool {
	return IsSchedulerClosedError(err) || IsNoPoolAvailableError(err) || IsPoolDestroyedError(err)
}
