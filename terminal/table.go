package terminal

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"minftp/transfer"
)

// FileInfo represents a file or directory entry
type FileInfo struct {
	Name      string
	Type      string
	Size      uint64
	Modified  time.Time
	IsDir     bool
	IsSymlink bool
}

// TableFormatter renders directory listings as a table.
type TableFormatter struct {
	out   io.Writer
	table *tablewriter.Table
}

// NewTableFormatter creates a table formatter writing to out.
func NewTableFormatter(out io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(out)
	table.Header("Name", "Type", "Size", "Modified")
	table.Options(
		tablewriter.WithRendition(tw.Rendition{Borders: tw.Border{Left: tw.Pending, Right: tw.Pending, Top: tw.Pending, Bottom: tw.Pending}}),
		tablewriter.WithPadding(tw.Padding{Left: "\t", Right: "\t"}),
	)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.MaxWidth = 0 // No max width
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{
				Global: tw.AlignLeft,
			},
		}
		cfg.Behavior = tw.Behavior{}
	})

	return &TableFormatter{
		out:   out,
		table: table,
	}
}

// FormatFTPDirectory formats an FTP directory listing
func (tf *TableFormatter) FormatFTPDirectory(entries []*ftp.Entry) error {
	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		files = append(files, FileInfo{
			Name:      entry.Name,
			Type:      entry.Type.String(),
			Size:      entry.Size,
			Modified:  entry.Time,
			IsDir:     entry.Type == ftp.EntryTypeFolder,
			IsSymlink: entry.Type == ftp.EntryTypeLink,
		})
	}
	return tf.renderTable(files)
}

func (tf *TableFormatter) renderTable(files []FileInfo) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(tf.out, "Directory is empty")
		return err
	}

	// Headers are dropped by Reset.
	tf.table.Reset()
	tf.table.Header("Name", "Type", "Size", "Modified")

	for _, file := range files {
		size := transfer.FormatSize(int64(file.Size))
		if file.IsDir {
			size = "-"
		}

		name := file.Name
		if file.IsDir {
			name = name + "/"
		} else if file.IsSymlink {
			name = name + "@"
		}
		if len(name) > 50 {
			name = name[:47] + "..."
		}

		// Files show their extension as the type.
		fileType := file.Type
		if !file.IsDir && !file.IsSymlink {
			if ext := filepath.Ext(file.Name); ext != "" {
				fileType = strings.ToUpper(strings.TrimPrefix(ext, "."))
			}
		}

		tf.table.Append([]string{
			name,
			fileType,
			size,
			file.Modified.Format("Jan 02 15:04"),
		})
	}

	return tf.table.Render()
}
