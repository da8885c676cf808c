package errors

import (
	"fmt"
)

type ErrGroupNotFound struct {
	GroupID int64
}

func (e *ErrGroupNotFound) Error() string {
	return fmt.Sprintf("группа не найдена: %d", e.GroupID)
}

func (e *ErrGroupNotFound) Is(target error) bool {
	_, ok := target.(*ErrGroupNotFound)
	return ok
}

type ErrMissingRequiredField struct {
	FieldName string
}

func (e *ErrMissingRequiredField) Error() string {
	return fmt.Sprintf("отсутствует обязательное поле: %s", e.FieldName)
}

func (e *ErrMissingRequiredField) Is(target error) bool {
	_, ok := target.(*ErrMissingRequiredField)
	return ok
}

type ErrInvalidValue struct {
	FieldName string
	Value     string
}

func (e *ErrInvalidValue) Error() string {
	return fmt.Sprintf("некорректное значение '%s' для поля '%s'", e.Value, e.FieldName)
}

func (e *ErrInvalidValue) Is(target error) bool {
	_, ok := target.(*ErrInvalidValue)
	return ok
}

type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

type ErrTelegramNotInitialized struct{}

func (e *ErrTelegramNotInitialized) Error() string {
	return "telegram клиент не инициализирован"
}

func (e *ErrTelegramNotInitialized) Is(target error) bool {
	_, ok := target.(*ErrTelegramNotInitialized)
	return ok
}

type ErrPublishFailed struct {
	Topic string
	Cause error
}

func (e *ErrPublishFailed) Error() string {
	return fmt.Sprintf("ошибка при публикации в топик %s: %v", e.Topic, e.Cause)
}

func (e *ErrPublishFailed) Unwrap() error {
	return e.Cause
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
