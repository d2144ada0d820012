// Package player ведёт респондента по анкете.
//
// Player связывает хранилища опросников и сессий с движком:
// стартует сессию на первом шаге, сохраняет ответы текущего шага
// (скрытые поля отбрасываются, значения нормализуются по типам),
// проверяет обязательные поля и выбирает следующий шаг по правилам
// перехода. Сессия всегда проходит ту версию анкеты, с которой стартовала.
package player
