package db

import (
	"database/sql"
	"fmt"
)

// DetailedResult contains all joined information for a result
type DetailedResult struct {
	ID int64

	// Image info
	ImageURI string
	Width    int
	Height   int

	// Parameters
	Channels     int
	Codec        string
	Fill         float64
	PayloadBytes int
	Capacity     int

	// Metrics
	MSE          float64
	PSNR         float64
	ChangedRatio float64
	Success      bool
	JPEGSurvived bool

	EmbedImagePath string
}

// QueryDetailed executes a query on the results_detailed view
func (d *DB) QueryDetailed(query string, args ...any) ([]*DetailedResult, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []*DetailedResult
	for rows.Next() {
		var r DetailedResult
		var psnr sql.NullFloat64
		err := rows.Scan(
			&r.ID,
			&r.ImageURI,
			&r.Width,
			&r.Height,
			&r.Channels,
			&r.Codec,
			&r.Fill,
			&r.PayloadBytes,
			&r.Capacity,
			&r.MSE,
			&psnr,
			&r.ChangedRatio,
			&r.Success,
			&r.JPEGSurvived,
			&r.EmbedImagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		r.PSNR = psnrValue(psnr)
		results = append(results, &r)
	}
	return results, rows.Err()
}

// GetResultsByFill returns results within a fill ratio range
func (d *DB) GetResultsByFill(minFill, maxFill float64) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT * FROM results_detailed
		WHERE fill BETWEEN ? AND ?
		ORDER BY fill, image_uri
	`, minFill, maxFill)
}

// GetResultsByImageSize returns results for specific image dimensions
func (d *DB) GetResultsByImageSize(width, height int) ([]*DetailedResult, error) {
	return d.QueryDetailed(`
		SELECT * FROM results_detailed
		WHERE width = ? AND height = ?
		ORDER BY fill
	`, width, height)
}

// FillStats holds statistics for one codec at one fill ratio
type FillStats struct {
	Codec           string
	Fill            float64
	TotalTests      int
	Successes       int
	SuccessRate     float64
	AvgPSNR         float64
	AvgChangedRatio float64
	JPEGSurvived    int
}

// GetFillStats returns statistics grouped by codec and fill ratio
func (d *DB) GetFillStats() ([]*FillStats, error) {
	rows, err := d.db.Query(`
		SELECT
			codec, fill,
			COUNT(*) as total_tests,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) as successes,
			AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) as success_rate,
			COALESCE(AVG(psnr), 0) as avg_psnr,
			AVG(changed_ratio) as avg_changed_ratio,
			SUM(CASE WHEN jpeg_survived THEN 1 ELSE 0 END) as jpeg_survived
		FROM results_detailed
		GROUP BY codec, fill
		ORDER BY codec, fill
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fill stats: %w", err)
	}
	defer rows.Close()

	var stats []*FillStats
	for rows.Next() {
		var s FillStats
		err := rows.Scan(
			&s.Codec, &s.Fill,
			&s.TotalTests, &s.Successes, &s.SuccessRate,
			&s.AvgPSNR, &s.AvgChangedRatio, &s.JPEGSurvived,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ImageSizeStats holds statistics for an image size
type ImageSizeStats struct {
	Width       int
	Height      int
	TotalTests  int
	Successes   int
	SuccessRate float64
	AvgPSNR     float64
}

// GetImageSizeStats returns statistics grouped by image size
func (d *DB) GetImageSizeStats() ([]*ImageSizeStats, error) {
	rows, err := d.db.Query(`
		SELECT
			width, height,
			COUNT(*) as total_tests,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) as successes,
			AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) as success_rate,
			COALESCE(AVG(psnr), 0) as avg_psnr
		FROM results_detailed
		GROUP BY width, height
		ORDER BY width, height
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query image size stats: %w", err)
	}
	defer rows.Close()

	var stats []*ImageSizeStats
	for rows.Next() {
		var s ImageSizeStats
		err := rows.Scan(
			&s.Width, &s.Height,
			&s.TotalTests, &s.Successes, &s.SuccessRate,
			&s.AvgPSNR,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ExecuteRawQuery executes a raw SQL query and returns rows
func (d *DB) ExecuteRawQuery(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}
