package auditor

import "errors"

// Ошибки аудитора.
var (
	// ErrVersionNotFound версия опросника удалена до проверки.
	ErrVersionNotFound = errors.New("assessment version not found")
)
