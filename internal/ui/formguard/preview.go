package formguard

import "fmt"

const bytesPerMiB = 1024 * 1024

// FormatMegabytes renders size in mebibytes with two decimals, rounding
// halves up like JavaScript's toFixed(2).
func FormatMegabytes(size int64) string {
	if size < 0 {
		size = 0
	}
	hundredths := (size*100 + bytesPerMiB/2) / bytesPerMiB
	return fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100)
}

// PreviewLine is the diagnostic written when a file is selected.
func PreviewLine(file FileInfo) string {
	return fmt.Sprintf("Arquivo selecionado: %s (%s MB)", file.Name, FormatMegabytes(file.Size))
}
