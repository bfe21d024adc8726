package repositories

import (
	"context"

	"github.com/somos/attraction/backend/internal/domain/entities"
)

// FeedbackRepository stores rider feedback. Create fails with a field
// validation error on "search" when SearchID names no stored search.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entities.Feedback) error
}
