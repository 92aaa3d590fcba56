package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cinelist/models"
)

const watchlistColumns = `id, user_id, external_id, title, media_type, status, poster_url, year, rating, genres, added_at, updated_at`

// WatchlistRepository persists watchlist entries. Entries are addressed either
// by their own ID or by the provider's external ID, always scoped to a user.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a repository on top of an open connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Insert stores entry. A second entry for the same (user, external ID) pair
// fails with ErrDuplicate.
func (r *WatchlistRepository) Insert(ctx context.Context, entry *models.WatchlistEntry) error {
	genres, err := encodeGenres(entry.Genres)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO watchlist_entries (`+watchlistColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.ExternalID, entry.Title, string(entry.MediaType), string(entry.Status),
		nullString(entry.PosterURL), entry.Year, nullString(entry.Rating), genres,
		toUnix(entry.AddedAt), toUnix(entry.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

// ListByUser returns the user's entries, most recently added first.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	return r.query(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_entries WHERE user_id = ? ORDER BY added_at DESC, rowid DESC`,
		userID)
}

// Find returns ErrNotFound when the user has no entry matching ref.
func (r *WatchlistRepository) Find(ctx context.Context, userID, ref string) (*models.WatchlistEntry, error) {
	entries, err := r.query(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_entries WHERE user_id = ? AND (id = ? OR external_id = ?) LIMIT 1`,
		userID, ref, ref)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// UpdateStatus sets the status of the entry matching ref and returns the updated row.
func (r *WatchlistRepository) UpdateStatus(ctx context.Context, userID, ref string, status models.WatchStatus, at time.Time) (*models.WatchlistEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE watchlist_entries SET status = ?, updated_at = ? WHERE user_id = ? AND (id = ? OR external_id = ?)`,
		string(status), toUnix(at), userID, ref, ref)
	if err != nil {
		return nil, fmt.Errorf("update watchlist status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update watchlist status: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return r.Find(ctx, userID, ref)
}

// Delete removes the entry matching ref and reports whether one existed.
func (r *WatchlistRepository) Delete(ctx context.Context, userID, ref string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist_entries WHERE user_id = ? AND (id = ? OR external_id = ?)`,
		userID, ref, ref)
	if err != nil {
		return false, fmt.Errorf("delete watchlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete watchlist entry: %w", err)
	}
	return n > 0, nil
}

// ListMissingGenres returns entries of every user that have no genres recorded,
// oldest first.
func (r *WatchlistRepository) ListMissingGenres(ctx context.Context, limit int) ([]models.WatchlistEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_entries WHERE genres = '' OR genres = '[]' ORDER BY added_at ASC, rowid ASC LIMIT ?`,
		limit)
}

// UpdateGenres replaces the genres of the entry with the given ID. It does not
// touch updated_at, which tracks status changes.
func (r *WatchlistRepository) UpdateGenres(ctx context.Context, id string, genres []string) error {
	encoded, err := encodeGenres(genres)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE watchlist_entries SET genres = ? WHERE id = ?`, encoded, id)
	if err != nil {
		return fmt.Errorf("update watchlist genres: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update watchlist genres: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WatchlistRepository) query(ctx context.Context, query string, args ...any) ([]models.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchlistEntry{}
	for rows.Next() {
		var (
			e                  models.WatchlistEntry
			mediaType, status  string
			poster, rating     sql.NullString
			genres             string
			addedAt, updatedAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ExternalID, &e.Title, &mediaType, &status,
			&poster, &e.Year, &rating, &genres, &addedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		e.MediaType = models.MediaType(mediaType)
		e.Status = models.WatchStatus(status)
		e.PosterURL = stringPtr(poster)
		e.Rating = stringPtr(rating)
		e.Genres = decodeGenres(genres)
		e.AddedAt = fromUnix(addedAt)
		e.UpdatedAt = fromUnix(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return entries, nil
}

