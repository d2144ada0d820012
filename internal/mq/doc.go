// Package mq события Pathway поверх RabbitMQ.
//
// Сообщения:
//   - assessment.saved   опросник создан, изменён или опубликован
//   - session.completed  респондент дошёл до конца опросника
//
// Обменники:
//   - pathway.assessments  события опросников
//   - pathway.sessions     события сессий
//   - pathway.dlq          сообщения, которые не удалось обработать
//
// Сервисы работают и без брокера: вместо Publisher подставляется Nop.
package mq
