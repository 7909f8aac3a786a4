package db

type (
	// Image represents a source image URL or generator name
	Image struct {
		ID  int64
		URI string // Unique constraint
	}

	// ImageSize represents resized dimensions
	ImageSize struct {
		ID      int64
		ImageID int64
		Width   int
		Height  int
		// Unique constraint on (ImageID, Width, Height)
	}

	// Result represents one embed at a fill ratio
	Result struct {
		ID          int64
		ImageSizeID int64
		Channels    int
		Codec       string
		Fill        float64 // payload / capacity

		PayloadBytes int
		Capacity     int

		// Evaluation metrics
		MSE          float64
		PSNR         float64 // +Inf is stored as NULL
		ChangedRatio float64
		Success      bool
		JPEGSurvived bool

		EmbedImagePath string

		// Unique constraint on (ImageSizeID, Channels, Codec, Fill)
	}
)
