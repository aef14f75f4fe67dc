package transfer

import (
	"fmt"
	"io"
	"time"
)

// DefaultProgressInterval throttles progress callbacks.
const DefaultProgressInterval = 100 * time.Millisecond

// ProgressFunc receives the bytes moved so far, the expected total (0 when
// unknown), the current speed in bytes per second and the elapsed time.
type ProgressFunc func(transferred, total int64, speed float64, elapsed time.Duration)

// ProgressReader wraps an io.Reader and reports how much has been read
type ProgressReader struct {
	Reader     io.Reader
	Total      int64
	OnProgress ProgressFunc
	Interval   time.Duration

	transferred int64
	startTime   time.Time
	lastUpdate  time.Time
	lastBytes   int64
}

// NewProgressReader wraps r. total may be 0 when the size is not known.
func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{
		Reader:     r,
		Total:      total,
		OnProgress: fn,
		Interval:   DefaultProgressInterval,
	}
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	if pr.startTime.IsZero() {
		pr.startTime = time.Now()
		pr.lastUpdate = pr.startTime
	}

	n, err = pr.Reader.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
	}

	now := time.Now()
	done := err == io.EOF
	if pr.OnProgress != nil && (done || now.Sub(pr.lastUpdate) >= pr.Interval) {
		var speed float64
		if secs := now.Sub(pr.lastUpdate).Seconds(); secs > 0 {
			speed = float64(pr.transferred-pr.lastBytes) / secs
		}
		pr.OnProgress(pr.transferred, pr.Total, speed, now.Sub(pr.startTime))
		pr.lastUpdate = now
		pr.lastBytes = pr.transferred
	}
	return n, err
}

// Transferred returns the number of bytes read so far.
func (pr *ProgressReader) Transferred() int64 {
	return pr.transferred
}

// ProgressBar renders a 50 column bar for a percentage between 0 and 100.
func ProgressBar(progress float64) string {
	const width = 50
	pos := int(float64(width) * progress / 100)
	bar := make([]rune, width)
	for i := range bar {
		switch {
		case i < pos:
			bar[i] = '='
		case i == pos:
			bar[i] = '>'
		default:
			bar[i] = ' '
		}
	}
	return string(bar)
}

// FormatSize formats a byte count in human-readable form.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
