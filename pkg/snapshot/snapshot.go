package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Writer persists intermediate and final conversion structures as
// indented JSON for diagnostics. Map keys serialize in sorted order and
// time values as RFC 3339, so snapshots of the same input are
// byte-identical across runs. Purely diagnostic; nothing reads these
// files back.
type Writer struct {
	dir    string
	logger *zap.Logger
}

// NewWriter creates a snapshot writer targeting dir, creating it if
// needed.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir %q: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger.Named("snapshot")}, nil
}

// Save writes data as indented JSON to <dir>/<filename>.
func (w *Writer) Save(filename string, data any) error {
	encoded, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %q: %w", filename, err)
	}

	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", path, err)
	}

	w.logger.Debug("Wrote snapshot", zap.String("path", path), zap.Int("bytes", len(encoded)))
	return nil
}
