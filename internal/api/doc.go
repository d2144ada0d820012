// Package api HTTP API сервера pathway-api.
//
// Структура:
//   - handler.go             Handler и его зависимости
//   - routes.go              регистрация маршрутов
//   - middleware.go          recovery, метрики, логирование
//   - response.go            JSON-ответы и отображение ошибок в HTTP-коды
//   - dto.go                 запросы и ответы
//   - assessment_handler.go  /assessments
//   - session_handler.go     /sessions
//
// Ответы: {"data": ...}, списки {"data": [...], "total": N},
// ошибки {"error": {"code": ..., "message": ...}}.
package api
