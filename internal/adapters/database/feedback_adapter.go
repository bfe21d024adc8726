package database

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/repositories"
	"github.com/somos/attraction/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
)

// SQLSTATE foreign_key_violation
const foreignKeyViolation = "23503"

// FeedbackAdapter writes feedback rows.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	query, args, err := a.db.Insert("feedback").Rows(goqu.Record{
		"id":         feedback.ID,
		"user_id":    nullString(feedback.UserID),
		"search_id":  nullString(feedback.SearchID),
		"rating":     feedback.Rating,
		"message":    feedback.Message,
		"email":      feedback.Email,
		"page":       feedback.Page,
		"user_agent": feedback.UserAgent,
		"ip_address": feedback.IPAddress,
		"created_at": feedback.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return apperrors.NewFieldValidationError("search", "Search does not exist.")
		}
		return apperrors.NewInternalError("failed to create feedback", err)
	}
	return nil
}
