package db

import (
	"database/sql"
	"fmt"
	"math"
)

// InsertImage inserts or gets an existing image by URI
func (d *DB) InsertImage(uri string) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow("SELECT id FROM images WHERE uri = ?", uri).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query image: %w", err)
	}

	// Insert new
	result, err := d.db.Exec("INSERT INTO images (uri) VALUES (?)", uri)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}
	return result.LastInsertId()
}

// InsertImageSize inserts or gets an existing image size
func (d *DB) InsertImageSize(imageID int64, width, height int) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM image_sizes WHERE image_id = ? AND width = ? AND height = ?",
		imageID, width, height,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query image size: %w", err)
	}

	// Insert new
	result, err := d.db.Exec(
		"INSERT INTO image_sizes (image_id, width, height) VALUES (?, ?, ?)",
		imageID, width, height,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image size: %w", err)
	}
	return result.LastInsertId()
}

// InsertResult inserts a result (or updates if already exists)
func (d *DB) InsertResult(result *Result) (int64, error) {
	psnr := nullPSNR(result.PSNR)

	// Check if result already exists
	var existingID int64
	err := d.db.QueryRow(
		"SELECT id FROM results WHERE image_size_id = ? AND channels = ? AND codec = ? AND fill = ?",
		result.ImageSizeID, result.Channels, result.Codec, result.Fill,
	).Scan(&existingID)

	if err == nil {
		// Update existing
		_, err = d.db.Exec(`
			UPDATE results SET
				payload_bytes = ?,
				capacity = ?,
				mse = ?,
				psnr = ?,
				changed_ratio = ?,
				success = ?,
				jpeg_survived = ?,
				embed_image_path = ?
			WHERE id = ?`,
			result.PayloadBytes,
			result.Capacity,
			result.MSE,
			psnr,
			result.ChangedRatio,
			result.Success,
			result.JPEGSurvived,
			result.EmbedImagePath,
			existingID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update result: %w", err)
		}
		return existingID, nil
	}

	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query existing result: %w", err)
	}

	// Insert new
	res, err := d.db.Exec(`
		INSERT INTO results (
			image_size_id, channels, codec, fill,
			payload_bytes, capacity,
			mse, psnr, changed_ratio, success, jpeg_survived,
			embed_image_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ImageSizeID,
		result.Channels,
		result.Codec,
		result.Fill,
		result.PayloadBytes,
		result.Capacity,
		result.MSE,
		psnr,
		result.ChangedRatio,
		result.Success,
		result.JPEGSurvived,
		result.EmbedImagePath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}
	return res.LastInsertId()
}

// ListResults retrieves all results
func (d *DB) ListResults() ([]*Result, error) {
	rows, err := d.db.Query(`
		SELECT id, image_size_id, channels, codec, fill,
		       payload_bytes, capacity,
		       mse, psnr, changed_ratio, success, jpeg_survived,
		       embed_image_path
		FROM results
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var r Result
		var psnr sql.NullFloat64
		err := rows.Scan(
			&r.ID, &r.ImageSizeID, &r.Channels, &r.Codec, &r.Fill,
			&r.PayloadBytes, &r.Capacity,
			&r.MSE, &psnr, &r.ChangedRatio, &r.Success, &r.JPEGSurvived,
			&r.EmbedImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.PSNR = psnrValue(psnr)
		results = append(results, &r)
	}
	return results, rows.Err()
}

// CountResults counts total results
func (d *DB) CountResults() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

func nullPSNR(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func psnrValue(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}
