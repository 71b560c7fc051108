package repository

import (
	"database/sql"
	"errors"

	"messenger-backend/internal/model"
)

type MediaRepository struct {
	DB *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

func (r *MediaRepository) InsertMediaFile(media *model.MediaFile) (*model.MediaFile, error) {
	query := `
		INSERT INTO media_files (user_id, file_name, blob_url, thumbnail_url, content_type, file_size, width, height, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.DB.QueryRow(
		query,
		media.UserID,
		media.FileName,
		media.BlobURL,
		sql.NullString{String: media.ThumbnailURL, Valid: media.ThumbnailURL != ""},
		media.ContentType,
		media.FileSize,
		media.Width,
		media.Height,
		media.UploadedAt,
	).Scan(&media.ID)

	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *MediaRepository) GetMediaFileByID(id, userID int64) (*model.MediaFile, error) {
	var m model.MediaFile
	var thumbnailURL sql.NullString

	query := `
		SELECT id, user_id, file_name, blob_url, thumbnail_url, content_type, file_size, width, height, uploaded_at
		FROM media_files
		WHERE id = $1 AND user_id = $2`

	err := r.DB.QueryRow(query, id, userID).Scan(
		&m.ID, &m.UserID, &m.FileName, &m.BlobURL, &thumbnailURL,
		&m.ContentType, &m.FileSize, &m.Width, &m.Height, &m.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	m.ThumbnailURL = thumbnailURL.String
	return &m, nil
}

func (r *MediaRepository) ListByUserID(userID int64, limit, offset int) ([]*model.MediaFile, error) {
	query := `
		SELECT id, user_id, file_name, blob_url, thumbnail_url, content_type, file_size, width, height, uploaded_at
		FROM media_files
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.MediaFile
	for rows.Next() {
		var m model.MediaFile
		var thumbnailURL sql.NullString

		err := rows.Scan(
			&m.ID, &m.UserID, &m.FileName, &m.BlobURL, &thumbnailURL,
			&m.ContentType, &m.FileSize, &m.Width, &m.Height, &m.UploadedAt,
		)
		if err != nil {
			return nil, err
		}

		m.ThumbnailURL = thumbnailURL.String
		files = append(files, &m)
	}

	return files, rows.Err()
}

func (r *MediaRepository) CountByUserID(userID int64) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM media_files WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *MediaRepository) DeleteMediaFile(id, userID int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM media_files WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
