package db

import (
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenSchemaVersion(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "results.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	d.Close()
	// reopening a current file keeps it
	d, err = Open(path)
	if err != nil {
		t.Fatalf("Open() second time error = %v", err)
	}
	d.Close()

	test := []struct {
		name  string
		setup string
	}{
		{"newer version", "PRAGMA user_version = 7"},
		{"unversioned results", "CREATE TABLE results (id INTEGER PRIMARY KEY, mark BLOB)"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".db")
			raw, err := sql.Open("sqlite", path)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := raw.Exec(tt.setup); err != nil {
				t.Fatal(err)
			}
			raw.Close()

			_, err = Open(path)
			if !errors.Is(err, ErrSchemaVersion) {
				t.Errorf("Open() error = %v, want %v", err, ErrSchemaVersion)
			}
		})
	}
}

func TestInsertImage(t *testing.T) {
	d := openTestDB(t)
	id1, err := d.InsertImage("gen:gradient")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := d.InsertImage("gen:gradient")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("InsertImage() returned %d then %d for the same uri", id1, id2)
	}

	s1, err := d.InsertImageSize(id1, 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := d.InsertImageSize(id1, 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Errorf("InsertImageSize() returned %d then %d for the same size", s1, s2)
	}
}

func TestInsertResult(t *testing.T) {
	d := openTestDB(t)
	imageID, err := d.InsertImage("gen:noise")
	if err != nil {
		t.Fatal(err)
	}
	sizeID, err := d.InsertImageSize(imageID, 32, 32)
	if err != nil {
		t.Fatal(err)
	}

	for _, fill := range []float64{0.5, 1.0} {
		_, err := d.InsertResult(&Result{
			ImageSizeID:  sizeID,
			Channels:     3,
			Codec:        "none",
			Fill:         fill,
			PayloadBytes: int(380 * fill),
			Capacity:     380,
			MSE:          fill / 2,
			PSNR:         50,
			ChangedRatio: fill / 2,
			Success:      true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// upsert keeps a single row per fill
	id, err := d.InsertResult(&Result{
		ImageSizeID: sizeID, Channels: 3, Codec: "none", Fill: 1.0,
		Capacity: 380, PayloadBytes: 380, PSNR: math.Inf(1), Success: false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("InsertResult() returned id 0")
	}

	count, err := d.CountResults()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("CountResults() = %d, want 2", count)
	}

	results, err := d.GetResultsByFill(1.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("GetResultsByFill() returned %d results, want 1", len(results))
	}
	r := results[0]
	if r.ImageURI != "gen:noise" || r.Width != 32 || r.Success || !math.IsInf(r.PSNR, 1) {
		t.Errorf("GetResultsByFill() = %+v", r)
	}

	stats, err := d.GetFillStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("GetFillStats() returned %d rows, want 2", len(stats))
	}
	if stats[0].Fill != 0.5 || stats[0].SuccessRate != 1 || stats[0].AvgPSNR != 50 {
		t.Errorf("GetFillStats()[0] = %+v", stats[0])
	}
	if stats[1].Fill != 1.0 || stats[1].Successes != 0 {
		t.Errorf("GetFillStats()[1] = %+v", stats[1])
	}

	all, err := d.ListResults()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("ListResults() returned %d results, want 2", len(all))
	}
}
