package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stemtrack/cartline-backend/internal/app"
)

// Writes the completed-carts workbook to a date-stamped file without going
// through the HTTP surface. Useful for cron and for end-of-day handoff.
func main() {
	outDir := "."
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := filepath.Join(outDir, a.Services.Export.Filename(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		a.Log.Error("Create export file failed", "path", path, "error", err)
		os.Exit(1)
	}

	if err := a.Services.Export.WriteWorkbook(ctx, f); err != nil {
		f.Close()
		os.Remove(path)
		a.Log.Error("Export failed", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		a.Log.Error("Close export file failed", "path", path, "error", err)
		os.Exit(1)
	}

	a.Log.Info("Export written", "path", path)
}
