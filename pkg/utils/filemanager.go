// =============================================================================
// Order Fulfillment - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline, including:
//   - Directory management
//   - Output file naming
//   - Run summary generation
//
// NAMING:
//   Output names are built from a format string with placeholders, so the
//   fulfillment export can be named per run without code changes.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the run timestamp used in file names (yyyyMMddHHmm).
const TimestampLayout = "200601021504"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
// An empty dir refers to the working directory and is left alone.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Run timestamp (yyyyMMddHHmm)
//               {date}      - Run date (yyyyMMdd)
//   - ext: The extension to enforce, including the dot. Empty skips it.
//   - now: The run time.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "{timestamp}"
//   ext:    ".csv"
//   output: "202610151230.csv"
func GenerateOutputFileName(format, ext string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format(TimestampLayout),
		"{date}":      now.Format("20060102"),
	}

	result := format
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about one pipeline run.
type RunSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	Customers      int
	OrdersRead     int
	OrdersExported []int64
	Removed        []string
	Files          []string
	Warnings       []string
}

// WriteSummaryLog writes a run summary to a text file.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	summaryFileName := fmt.Sprintf("run_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Order Fulfillment - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Customers:          %d\n"+
		"  Orders Read:        %d\n"+
		"  Orders Exported:    %d\n"+
		"  Orders Removed:     %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Customers,
		summary.OrdersRead,
		len(summary.OrdersExported),
		len(summary.Removed))

	writeSection(writer, "Ignored Orders:", summary.Removed)
	writeSection(writer, "Files Written:", summary.Files)
	writeSection(writer, "Warnings:", summary.Warnings)

	if len(summary.OrdersExported) > 0 {
		ids := make([]string, len(summary.OrdersExported))
		for i, id := range summary.OrdersExported {
			ids[i] = fmt.Sprintf("%d", id)
		}
		writeSection(writer, "Orders Exported:", []string{strings.Join(ids, ", ")})
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSection(w *bufio.Writer, title string, entries []string) {
	if len(entries) == 0 {
		return
	}
	w.WriteString(title + "\n")
	w.WriteString("--------------------------------------------------------------------------------\n")
	for _, e := range entries {
		w.WriteString("  " + e + "\n")
	}
	w.WriteString("\n")
}
