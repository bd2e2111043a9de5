// export-init checks the Google Sheets export configuration: it
// authenticates with the configured credentials, verifies the
// spreadsheet is reachable and prepares the target sheet tab with
// its header row. Run it once before starting duitku-worker.
package main

import (
	"context"
	"os"
	"time"

	"duitku/internal/cli"
	"duitku/internal/export"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("export-init")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.ExportSpreadsheetID == "" {
		logger.Error("EXPORT_SPREADSHEET_ID is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sheets, err := export.NewSheetsClient(ctx, export.Options{
		SpreadsheetID:   cfg.ExportSpreadsheetID,
		SheetName:       cfg.ExportSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	if err := sheets.EnsureSheet(ctx); err != nil {
		logger.Error("Export sheet check failed", "error", err, "spreadsheet_id", cfg.ExportSpreadsheetID)
		os.Exit(1)
	}

	logger.Info("Export sheet ready", "spreadsheet_id", cfg.ExportSpreadsheetID, "sheet", cfg.ExportSheetName)
}
