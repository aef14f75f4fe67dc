package perfmetrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CsvHeader defines the CSV header for the transfer log
const CsvHeader = "Timestamp,Host,Operation,FileName,Bytes,FileSizeMB,ThroughputMBps,TimeSec,Result\n"

// TransferRecord describes one finished get or put.
type TransferRecord struct {
	Time      time.Time
	Host      string
	Operation string
	FileName  string
	Bytes     int64
	Duration  time.Duration
	Err       error
}

// Throughput returns megabytes per second, or 0 for an instant transfer.
func (r TransferRecord) Throughput() float64 {
	secs := r.Duration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Bytes) / (1024 * 1024) / secs
}

// LogTransfer appends rec to the CSV file at path, writing the header
// first when the file is new.
func LogTransfer(path string, rec TransferRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if file exists to determine if we need to write header
	fileExists := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	if !fileExists {
		if _, err := file.WriteString(CsvHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	result := "ok"
	if rec.Err != nil {
		result = rec.Err.Error()
	}

	record := []string{
		rec.Time.Format(time.RFC3339),
		rec.Host,
		rec.Operation,
		rec.FileName,
		strconv.FormatInt(rec.Bytes, 10),
		strconv.FormatFloat(float64(rec.Bytes)/(1024*1024), 'f', 2, 64),
		strconv.FormatFloat(rec.Throughput(), 'f', 2, 64),
		strconv.FormatFloat(rec.Duration.Seconds(), 'f', 2, 64),
		result,
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}

	// Ensure data is written to disk
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
