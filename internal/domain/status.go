package domain

// AssessmentStatus описывает статус публикации опросника.
//
// Жизненный цикл:
//
//	draft → published
type AssessmentStatus string

const (
	// AssessmentStatusDraft: опросник редактируется, сессии по нему не стартуют.
	AssessmentStatusDraft AssessmentStatus = "draft"

	// AssessmentStatusPublished: опросник доступен для прохождения.
	AssessmentStatusPublished AssessmentStatus = "published"
)

// IsValid возвращает true для известных статусов.
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentStatusDraft, AssessmentStatusPublished:
		return true
	default:
		return false
	}
}

func (s AssessmentStatus) String() string {
	return string(s)
}

// ParseAssessmentStatus преобразует строку в AssessmentStatus.
// Неизвестные значения трактуются как draft.
func ParseAssessmentStatus(s string) AssessmentStatus {
	status := AssessmentStatus(s)
	if !status.IsValid() {
		return AssessmentStatusDraft
	}
	return status
}

// SessionStatus описывает статус прохождения опросника.
//
// Жизненный цикл:
//
//	IN_PROGRESS → COMPLETED
//	            ↘ EXPIRED (по истечении TTL, см. scheduler)
type SessionStatus string

const (
	// SessionStatusInProgress: респондент ещё отвечает.
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"

	// SessionStatusCompleted: достигнут конец анкеты.
	SessionStatusCompleted SessionStatus = "COMPLETED"

	// SessionStatusExpired: сессия брошена и закрыта планировщиком.
	SessionStatusExpired SessionStatus = "EXPIRED"
)

// IsTerminal возвращает true, если сессию больше нельзя продолжить.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusExpired:
		return true
	default:
		return false
	}
}

func (s SessionStatus) String() string {
	return string(s)
}
