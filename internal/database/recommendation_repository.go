package database

import (
	"context"
	"database/sql"
	"fmt"

	"cinelist/models"
)

// RecommendationRepository stores the latest recommendation batch per user.
type RecommendationRepository struct {
	db *sql.DB
}

// NewRecommendationRepository creates a repository on top of an open connection.
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// ReplaceForUser atomically swaps the user's stored batch for recs.
func (r *RecommendationRepository) ReplaceForUser(ctx context.Context, userID string, recs []models.Recommendation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recommendations tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO recommendations
		(user_id, position, external_id, title, media_type, year, poster_url, rating, genres, score, source, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare recommendation insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		genres, err := encodeGenres(rec.Item.Genres)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, userID, rec.Position, rec.Item.ExternalID, rec.Item.Title,
			string(rec.Item.MediaType), rec.Item.Year, nullString(rec.Item.PosterURL), nullString(rec.Item.Rating),
			genres, rec.Score, rec.Source, toUnix(rec.GeneratedAt)); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recommendations: %w", err)
	}
	return nil
}

// ListByUser returns the stored batch in its original order.
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID string) ([]models.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT position, external_id, title, media_type, year, poster_url, rating,
		genres, score, source, generated_at FROM recommendations WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []models.Recommendation{}
	for rows.Next() {
		var (
			rec            models.Recommendation
			mediaType      string
			poster, rating sql.NullString
			genres         string
			generatedAt    int64
		)
		if err := rows.Scan(&rec.Position, &rec.Item.ExternalID, &rec.Item.Title, &mediaType, &rec.Item.Year,
			&poster, &rating, &genres, &rec.Score, &rec.Source, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.UserID = userID
		rec.Item.MediaType = models.MediaType(mediaType)
		rec.Item.PosterURL = stringPtr(poster)
		rec.Item.Rating = stringPtr(rating)
		rec.Item.Genres = decodeGenres(genres)
		rec.GeneratedAt = fromUnix(generatedAt)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}
