package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vlogapp/api/internal/models"
	"vlogapp/api/internal/store"
)

type VlogRepository struct {
	pool *pgxpool.Pool
}

func NewVlogRepository(pool *pgxpool.Pool) *VlogRepository {
	return &VlogRepository{pool: pool}
}

func (r *VlogRepository) Create(ctx context.Context, vlog models.Vlog) error {
	const query = `
		INSERT INTO vlogs (id, user_id, title, description, video_url, thumbnail_url, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		vlog.ID,
		vlog.UserID,
		vlog.Title,
		vlog.Description,
		vlog.VideoURL,
		vlog.ThumbnailURL,
		vlog.CategoryID,
	)
	return err
}

const vlogSelect = `
	SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url,
	       v.category_id, v.created_at, v.updated_at, u.name,
	       (SELECT COUNT(*) FROM vlog_likes l WHERE l.vlog_id = v.id),
	       (SELECT COUNT(*) FROM vlog_comments c WHERE c.vlog_id = v.id)
	FROM vlogs v
	JOIN users u ON u.id = v.user_id
`

func scanVlog(row pgx.Row) (models.Vlog, error) {
	var vlog models.Vlog
	err := row.Scan(
		&vlog.ID,
		&vlog.UserID,
		&vlog.Title,
		&vlog.Description,
		&vlog.VideoURL,
		&vlog.ThumbnailURL,
		&vlog.CategoryID,
		&vlog.CreatedAt,
		&vlog.UpdatedAt,
		&vlog.AuthorName,
		&vlog.LikeCount,
		&vlog.CommentCount,
	)
	return vlog, err
}

func (r *VlogRepository) GetByID(ctx context.Context, id string) (models.Vlog, error) {
	const query = vlogSelect + ` WHERE v.id = $1`

	vlog, err := scanVlog(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Vlog{}, store.ErrVlogNotFound
		}
		return models.Vlog{}, err
	}
	return vlog, nil
}

func (r *VlogRepository) List(ctx context.Context, filter store.VlogFilter) ([]models.Vlog, error) {
	query := vlogSelect + `
		WHERE ($1 = '' OR v.category_id = $1)
		  AND ($2 = '' OR v.title ILIKE '%' || $2 || '%')
		ORDER BY v.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, filter.CategoryID, filter.Query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vlogs []models.Vlog
	for rows.Next() {
		vlog, err := scanVlog(rows)
		if err != nil {
			return nil, err
		}
		vlogs = append(vlogs, vlog)
	}
	return vlogs, rows.Err()
}

func (r *VlogRepository) Update(ctx context.Context, id string, upd store.VlogUpdate) (int64, error) {
	const query = `
		UPDATE vlogs
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    thumbnail_url = COALESCE($4, thumbnail_url),
		    category_id = COALESCE($5, category_id),
		    updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query, id, upd.Title, upd.Description, upd.ThumbnailURL, upd.CategoryID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *VlogRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM vlogs WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *VlogRepository) Comments(ctx context.Context, vlogID string) ([]models.VlogComment, error) {
	const query = `
		SELECT c.id, c.vlog_id, c.user_id, c.content, c.created_at, u.name
		FROM vlog_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.vlog_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, vlogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.VlogComment
	for rows.Next() {
		var comment models.VlogComment
		if err := rows.Scan(
			&comment.ID,
			&comment.VlogID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.AuthorName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *VlogRepository) AddComment(ctx context.Context, comment models.VlogComment) error {
	const query = `
		INSERT INTO vlog_comments (id, vlog_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.pool.Exec(ctx, query, comment.ID, comment.VlogID, comment.UserID, comment.Content)
	return err
}

func (r *VlogRepository) Like(ctx context.Context, vlogID, userID string) error {
	const query = `
		INSERT INTO vlog_likes (vlog_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (vlog_id, user_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, vlogID, userID)
	return err
}

func (r *VlogRepository) Unlike(ctx context.Context, vlogID, userID string) error {
	const query = `DELETE FROM vlog_likes WHERE vlog_id = $1 AND user_id = $2`

	_, err := r.pool.Exec(ctx, query, vlogID, userID)
	return err
}

func (r *VlogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
