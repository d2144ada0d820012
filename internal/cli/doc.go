// Package cli реализует инструмент командной строки Pathway.
//
// # Обзор
//
// CLI работает с Pathway API по HTTP: управляет опросниками и позволяет
// пройти анкету шаг за шагом из терминала. Единственное исключение
// команда lint, которая проверяет файл анкеты локально через engine.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Pathway API. Разбирает обёртки ответов {data},
// {data,total} и {error}. Ошибки сервера возвращаются как *APIError
// с кодом, сообщением и ошибками полей.
//
//	client := cli.NewClient("http://localhost:8080", 30*time.Second)
//	list, err := client.ListAssessments(ctx, cli.ListAssessmentsOpts{Status: "published"})
//
// ## Output
//
// Таблицы через text/tabwriter по умолчанию, JSON с флагом --json.
// Данные выводятся в stdout, сообщения в stderr:
//
//	pathway assessment list --json | jq .
//
// ## Commands
//
//   - assessment: list, create, show, update, delete, publish, lint
//   - session: start, show, answer, next, back
//   - lint: локальная проверка файла анкеты
//
// Группы создаются фабриками (NewAssessmentCmd и т.д.), которые принимают
// clientFn и outputFn. Замыкания создают Client и Output после разбора
// PersistentFlags.
package cli
