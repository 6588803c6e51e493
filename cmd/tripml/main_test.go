package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writeTrips(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(5))

	path := filepath.Join(t.TempDir(), "trips.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	fmt.Fprintln(f, "passenger_count,trip_distance,trip_time,fare_amount")
	for i := 0; i < n; i++ {
		passengers := 1 + rng.Intn(4)
		distance := 0.2 + rng.Float64()*14
		duration := distance*190 + rng.Float64()*180
		fare := 2.5 + 0.5*float64(passengers) + 2.2*distance + 0.002*duration + rng.NormFloat64()*0.4
		fmt.Fprintf(f, "%d,%.3f,%.0f,%.2f\n", passengers, distance, duration, fare)
	}
	return path
}

func TestRunSingleNode(t *testing.T) {
	cfg := config{
		dbPath:    ":memory:",
		csvPath:   writeTrips(t, 500),
		tableName: "trips",
		query:     "SELECT passenger_count, trip_distance, trip_time, fare_amount FROM trips",
		target:    "fare_amount",
		trainFrac: 0.8,
		scale:     "standard",
		headRows:  3,
	}

	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunRejectsUnknownScaleMode(t *testing.T) {
	cfg := config{
		dbPath:    ":memory:",
		csvPath:   writeTrips(t, 100),
		tableName: "trips",
		query:     "SELECT passenger_count, trip_distance, fare_amount FROM trips",
		target:    "fare_amount",
		trainFrac: 0.8,
		scale:     "robust",
		headRows:  3,
	}

	if err := run(context.Background(), cfg); err == nil {
		t.Fatal("run() expected error for unknown scale mode")
	}
}

func TestRunDistributedWithPlots(t *testing.T) {
	dir := t.TempDir()
	cfg := config{
		dbPath:    ":memory:",
		csvPath:   writeTrips(t, 800),
		tableName: "trips",
		query:     "SELECT passenger_count, trip_distance, trip_time, fare_amount FROM trips",
		target:    "fare_amount",
		trainFrac: 0.75,
		workers:   3,
		scale:     "minmax",
		plotPath:  filepath.Join(dir, "scatter.png"),
		residPath: filepath.Join(dir, "residuals.png"),
		headRows:  3,
	}

	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, p := range []string{cfg.plotPath, cfg.residPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("expected plot at %s, err = %v", p, err)
		}
	}
}

func TestRunUnknownTargetFails(t *testing.T) {
	cfg := config{
		dbPath:    ":memory:",
		csvPath:   writeTrips(t, 100),
		tableName: "trips",
		query:     "SELECT passenger_count, trip_distance FROM trips",
		target:    "tip_amount",
		trainFrac: 0.8,
		headRows:  3,
	}

	if err := run(context.Background(), cfg); err == nil {
		t.Fatal("run() expected error for unknown target column")
	}
}
