package repo

import "errors"

// Ошибки хранилищ опросников и сессий. Возвращаются всеми драйверами.
var (
	// ErrNotFound: запись не найдена в хранилище.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists: запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")
)
