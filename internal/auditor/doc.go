// Package auditor реализует фоновую проверку опросников.
//
// Auditor слушает очередь assessments.audit: на каждое событие
// assessment.saved загружает сохранённую версию, прогоняет engine.Lint
// и обновляет метрики pathway_definitions_linted_total и
// pathway_unreachable_steps. Недостижимые шаги и висячие ссылки
// попадают в лог с идентификатором опросника.
//
// Из очереди sessions.completed Auditor собирает статистику
// прохождений: длительность и число посещённых шагов.
//
// Если событие потерялось, периодический обход опубликованных
// опросников (AUDITOR_POLL_INTERVAL) пересчитывает метрики заново.
//
// Конфигурация через переменные окружения:
//
//	STORE_DRIVER           postgres | sqlite | memory
//	DB_URL                 строка подключения к PostgreSQL
//	RABBITMQ_URL           адрес брокера (обязателен)
//	AUDITOR_PREFETCH       сообщений в работе одновременно
//	AUDITOR_POLL_INTERVAL  период полного обхода
//	METRICS_PORT           порт /metrics и /healthz
package auditor
