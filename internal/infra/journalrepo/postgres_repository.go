package journalrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/mood-journal/internal/domain/emotion"
	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// ErrEntryNotFound is returned by Update when the entry does not belong to the user.
var ErrEntryNotFound = errors.New("entry not found")

const selectEntry = `
	SELECT e.id, e.user_id, e.content, e.analyzed, e.created_at, e.updated_at,
	       COALESCE(s.joy, 0), COALESCE(s.sadness, 0), COALESCE(s.anger, 0),
	       COALESCE(s.fear, 0), COALESCE(s.surprise, 0),
	       ARRAY(
	           SELECT t.name FROM entry_tags et
	           JOIN tags t ON t.id = et.tag_id
	           WHERE et.entry_id = e.id
	           ORDER BY et.position
	       ) AS tags
	FROM entries e
	LEFT JOIN emotion_scores s ON s.entry_id = e.id
`

const tagFilter = `
	AND EXISTS (
	    SELECT 1 FROM entry_tags et
	    JOIN tags t ON t.id = et.tag_id
	    WHERE et.entry_id = e.id AND t.name = $2
	)
`

// PostgresRepository stores entries, tags, and emotion scores in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO entries (id, user_id, content, analyzed, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, entry.ID, entry.UserID, entry.Content, entry.Analyzed, entry.CreatedAt, entry.UpdatedAt); err != nil {
			return err
		}
		if err := upsertScores(ctx, tx, entry.ID, entry.Emotions); err != nil {
			return err
		}
		return replaceTags(ctx, tx, entry.UserID, entry.ID, entry.Tags)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	return r.mustGet(ctx, entry.UserID, entry.ID)
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64, id uuid.UUID) (journal.Entry, bool, error) {
	row := r.pool.QueryRow(ctx, selectEntry+` WHERE e.id = $1 AND e.user_id = $2`, id, userID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return journal.Entry{}, false, nil
	}
	if err != nil {
		return journal.Entry{}, false, err
	}
	return entry, true, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, filter journal.Filter) ([]journal.Entry, error) {
	query := selectEntry + ` WHERE e.user_id = $1`
	args := []any{userID}
	argPos := 2
	if filter.Tag != "" {
		query += tagFilter
		args = append(args, filter.Tag)
		argPos++
	}
	query += ` ORDER BY e.created_at DESC, e.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]journal.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, userID int64, tag string) (int, error) {
	query := `SELECT COUNT(*) FROM entries e WHERE e.user_id = $1`
	args := []any{userID}
	if tag != "" {
		query += tagFilter
		args = append(args, tag)
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) Update(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE entries
			SET content = $1, analyzed = $2, updated_at = $3
			WHERE id = $4 AND user_id = $5
		`, entry.Content, entry.Analyzed, entry.UpdatedAt, entry.ID, entry.UserID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEntryNotFound
		}
		if err := upsertScores(ctx, tx, entry.ID, entry.Emotions); err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, entry.UserID, entry.ID, entry.Tags); err != nil {
			return err
		}
		return pruneTags(ctx, tx, entry.UserID)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	return r.mustGet(ctx, entry.UserID, entry.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) (bool, error) {
	var deleted bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		if !deleted {
			return nil
		}
		return pruneTags(ctx, tx, userID)
	})
	return deleted, err
}

func (r *PostgresRepository) ListTags(ctx context.Context, userID int64) ([]journal.TagCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.name, COUNT(et.entry_id)
		FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		WHERE t.user_id = $1
		GROUP BY t.name
		ORDER BY COUNT(et.entry_id) DESC, t.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]journal.TagCount, 0)
	for rows.Next() {
		var tc journal.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

func (r *PostgresRepository) Readings(ctx context.Context, userID int64) ([]emotion.Reading, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			CASE WHEN e.analyzed THEN COALESCE(s.joy, 0) ELSE 0 END,
			CASE WHEN e.analyzed THEN COALESCE(s.sadness, 0) ELSE 0 END,
			CASE WHEN e.analyzed THEN COALESCE(s.anger, 0) ELSE 0 END,
			CASE WHEN e.analyzed THEN COALESCE(s.fear, 0) ELSE 0 END,
			CASE WHEN e.analyzed THEN COALESCE(s.surprise, 0) ELSE 0 END,
			e.created_at
		FROM entries e
		LEFT JOIN emotion_scores s ON s.entry_id = e.id
		WHERE e.user_id = $1
		ORDER BY e.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]emotion.Reading, 0)
	for rows.Next() {
		var rd emotion.Reading
		if err := rows.Scan(&rd.Joy, &rd.Sadness, &rd.Anger, &rd.Fear, &rd.Surprise, &rd.CreatedAt); err != nil {
			return nil, err
		}
		rd.CreatedAt = rd.CreatedAt.UTC()
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}

func (r *PostgresRepository) mustGet(ctx context.Context, userID int64, id uuid.UUID) (journal.Entry, error) {
	entry, found, err := r.Get(ctx, userID, id)
	if err != nil {
		return journal.Entry{}, err
	}
	if !found {
		return journal.Entry{}, fmt.Errorf("entry %s vanished after write", id)
	}
	return entry, nil
}

func upsertScores(ctx context.Context, tx pgx.Tx, entryID uuid.UUID, s emotion.Scores) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO emotion_scores (entry_id, joy, sadness, anger, fear, surprise)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entry_id) DO UPDATE
		SET joy = EXCLUDED.joy, sadness = EXCLUDED.sadness, anger = EXCLUDED.anger,
		    fear = EXCLUDED.fear, surprise = EXCLUDED.surprise
	`, entryID, s.Joy, s.Sadness, s.Anger, s.Fear, s.Surprise)
	return err
}

func replaceTags(ctx context.Context, tx pgx.Tx, userID int64, entryID uuid.UUID, tags []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM entry_tags WHERE entry_id = $1`, entryID); err != nil {
		return err
	}
	for i, name := range tags {
		var tagID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO tags (user_id, name)
			VALUES ($1, $2)
			ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, userID, name).Scan(&tagID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO entry_tags (entry_id, tag_id, position)
			VALUES ($1, $2, $3)
		`, entryID, tagID, i); err != nil {
			return err
		}
	}
	return nil
}

func pruneTags(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM tags t
		WHERE t.user_id = $1
		  AND NOT EXISTS (SELECT 1 FROM entry_tags et WHERE et.tag_id = t.id)
	`, userID)
	return err
}

func scanEntry(row pgx.Row) (journal.Entry, error) {
	var entry journal.Entry
	var tags []string
	if err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Content, &entry.Analyzed, &entry.CreatedAt, &entry.UpdatedAt,
		&entry.Emotions.Joy, &entry.Emotions.Sadness, &entry.Emotions.Anger,
		&entry.Emotions.Fear, &entry.Emotions.Surprise,
		&tags,
	); err != nil {
		return journal.Entry{}, err
	}
	if tags == nil {
		tags = []string{}
	}
	entry.Tags = tags
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return entry, nil
}

var _ journal.Repository = (*PostgresRepository)(nil)
