package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output directory layout under the configured root:
//
//	<root>/export_hash.json          export ledger
//	<root>/image_hash.json           image ledger
//	<root>/export/<Name>.json        pretty export artifact
//	<root>/export/<Name>.min.json    minified export artifact
//	<root>/image/<file>.png          canonical texture copy
//	<root>/image/<S>x<S>/<file>.png  derivative per configured size
//	<root>/.history/<id>.json        per-cycle journal entries

// ExportLedgerPath returns the export-phase ledger file path.
func ExportLedgerPath(root string) string {
	return filepath.Join(root, "export_hash.json")
}

// ImageLedgerPath returns the image-phase ledger file path.
func ImageLedgerPath(root string) string {
	return filepath.Join(root, "image_hash.json")
}

// ExportDir returns the directory holding export JSON artifacts.
func ExportDir(root string) string {
	return filepath.Join(root, "export")
}

// ImageDir returns the directory holding texture artifacts.
func ImageDir(root string) string {
	return filepath.Join(root, "image")
}

// SizeDir returns the derivative directory for a square size.
func SizeDir(root string, size int) string {
	return filepath.Join(ImageDir(root), fmt.Sprintf("%dx%d", size, size))
}

// HistoryDir returns the cycle journal directory.
func HistoryDir(root string) string {
	return filepath.Join(root, ".history")
}

// EnsureLayout creates the output directory tree for the given sizes.
func EnsureLayout(root string, sizes []int) error {
	dirs := []string{root, ExportDir(root), ImageDir(root), HistoryDir(root)}
	for _, size := range sizes {
		dirs = append(dirs, SizeDir(root, size))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
