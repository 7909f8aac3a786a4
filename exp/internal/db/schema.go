package db

const schema = `
-- Images table
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE
);

-- Image sizes table
CREATE TABLE IF NOT EXISTS image_sizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_id INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
    UNIQUE(image_id, width, height)
);

-- Results table, one row per fill ratio
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_size_id INTEGER NOT NULL,
    channels INTEGER NOT NULL,
    codec TEXT NOT NULL,
    fill REAL NOT NULL,

    payload_bytes INTEGER NOT NULL,
    capacity INTEGER NOT NULL,

    mse REAL NOT NULL,
    psnr REAL,
    changed_ratio REAL NOT NULL,
    success BOOLEAN NOT NULL,
    jpeg_survived BOOLEAN NOT NULL,

    embed_image_path TEXT NOT NULL,

    FOREIGN KEY (image_size_id) REFERENCES image_sizes(id) ON DELETE CASCADE,
    UNIQUE(image_size_id, channels, codec, fill)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_results_success ON results(success);
CREATE INDEX IF NOT EXISTS idx_results_fill ON results(fill);
CREATE INDEX IF NOT EXISTS idx_results_psnr ON results(psnr);
CREATE INDEX IF NOT EXISTS idx_image_sizes_image ON image_sizes(image_id);
CREATE INDEX IF NOT EXISTS idx_image_sizes_dims ON image_sizes(width, height);

-- View for easy querying with all details
CREATE VIEW IF NOT EXISTS results_detailed AS
SELECT
    r.id,

    i.uri as image_uri,
    isz.width,
    isz.height,

    r.channels,
    r.codec,
    r.fill,
    r.payload_bytes,
    r.capacity,

    r.mse,
    r.psnr,
    r.changed_ratio,
    r.success,
    r.jpeg_survived,
    r.embed_image_path
FROM results r
JOIN image_sizes isz ON r.image_size_id = isz.id
JOIN images i ON isz.image_id = i.id;
`
