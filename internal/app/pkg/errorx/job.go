package errorx

import "errors"

// JobError 队列任务处理失败，Retryable 决定消息是否留给队列重新投递
type JobError struct {
	Reason    string
	Retryable bool
	cause     error
}

func (e *JobError) Error() string {
	if e.cause == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.cause.Error()
}

func (e *JobError) Unwrap() error { return e.cause }

// Retriable 临时故障（存储不可用、处理被中断），不 ack
func Retriable(reason string, cause error) *JobError {
	return &JobError{Reason: reason, Retryable: true, cause: cause}
}

// NonRetriable 重试也无法成功的失败（消息损坏、记录不存在），直接 ack
func NonRetriable(reason string, cause error) *JobError {
	return &JobError{Reason: reason, cause: cause}
}

// IsRetryable 只有显式标记为可重试的错误才返回 true
func IsRetryable(err error) bool {
	var je *JobError
	return errors.As(err, &je) && je.Retryable
}
