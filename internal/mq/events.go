package mq

import (
	"context"

	"github.com/shaiso/Pathway/internal/domain"
)

// Events исходящие события Pathway.
type Events interface {
	AssessmentSaved(ctx context.Context, a *domain.Assessment) error
	SessionCompleted(ctx context.Context, s *domain.Session) error
}

var (
	_ Events = (*Publisher)(nil)
	_ Events = Nop{}
)

// Nop отбрасывает события. Используется, когда RABBITMQ_URL не задан.
type Nop struct{}

func (Nop) AssessmentSaved(context.Context, *domain.Assessment) error { return nil }
func (Nop) SessionCompleted(context.Context, *domain.Session) error   { return nil }
