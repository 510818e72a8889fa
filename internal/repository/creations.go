package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/quickai/quickai/internal/models"
)

// CreationRepository persists and queries creation rows.
type CreationRepository struct {
	db *sqlx.DB
}

func NewCreationRepository(db *sqlx.DB) *CreationRepository {
	return &CreationRepository{db: db}
}

// Insert writes one creation row and returns the server-assigned id.
func (r *CreationRepository) Insert(ctx context.Context, c models.NewCreation) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO creations (user_id, prompt, content, type, publish)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.UserID, c.Prompt, c.Content, c.Type, c.Publish,
	).Scan(&id)
	if err != nil {
		return 0, models.WrapError(models.KindPersistence, "Failed to save creation", err)
	}
	return id, nil
}

// ListByOwner returns the owner's creations, newest first.
func (r *CreationRepository) ListByOwner(ctx context.Context, userID string) ([]models.Creation, error) {
	creations := []models.Creation{}
	err := r.db.SelectContext(ctx, &creations,
		`SELECT id, user_id, prompt, content, type, publish, likes, created_at
		 FROM creations WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, models.WrapError(models.KindPersistence, "Failed to fetch creations", err)
	}
	return creations, nil
}

// ListPublished returns all published creations, newest first.
func (r *CreationRepository) ListPublished(ctx context.Context) ([]models.Creation, error) {
	creations := []models.Creation{}
	err := r.db.SelectContext(ctx, &creations,
		`SELECT id, user_id, prompt, content, type, publish, likes, created_at
		 FROM creations WHERE publish = TRUE ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, models.WrapError(models.KindPersistence, "Failed to fetch creations", err)
	}
	return creations, nil
}

// ToggleLike flips userID's membership in the row's likes set and reports
// whether the user likes the creation afterwards. One statement, so
// concurrent toggles from different users never lose each other's update.
func (r *CreationRepository) ToggleLike(ctx context.Context, id int, userID string) (bool, error) {
	var liked bool
	err := r.db.QueryRowContext(ctx,
		`UPDATE creations
		 SET likes = CASE
			WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
			ELSE array_append(likes, $2)
		 END
		 WHERE id = $1
		 RETURNING $2 = ANY(likes)`,
		id, userID,
	).Scan(&liked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.NewError(models.KindNotFound, "Creation not found")
	}
	if err != nil {
		return false, models.WrapError(models.KindPersistence, "Failed to update likes", err)
	}
	return liked, nil
}
