package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// MetaRecord is the compact per-request log line: sizes and outcome only,
// no payload text.
type MetaRecord struct {
	Timestamp    string `json:"timestamp"`
	RequestID    string `json:"request_id"`
	VacancyRunes int    `json:"vacancy_runes"`
	ResumeRunes  int    `json:"resume_runes"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// FullRecord is the verbose per-request log line with the complete texts
// and the raw result, kept in a separate file from the meta log.
type FullRecord struct {
	Timestamp   string          `json:"timestamp"`
	RequestID   string          `json:"request_id"`
	VacancyText string          `json:"vacancy_text"`
	ResumeText  string          `json:"resume_text"`
	Result      json.RawMessage `json:"result,omitempty"`
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
}

// JSONLWriter appends request records to newline-delimited JSON files.
// Writes are best-effort: failures are logged and swallowed so that audit
// logging never breaks the analysis flow.
type JSONLWriter struct {
	metaPath string
	fullPath string
	logger   *zap.Logger
}

func NewJSONLWriter(logger *zap.Logger, metaPath, fullPath string) *JSONLWriter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &JSONLWriter{
		metaPath: metaPath,
		fullPath: fullPath,
		logger:   logger,
	}
}

func (w *JSONLWriter) WriteMeta(rec MetaRecord) {
	if w == nil || w.metaPath == "" {
		return
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	w.appendLine(w.metaPath, rec)
}

func (w *JSONLWriter) WriteFull(rec FullRecord) {
	if w == nil || w.fullPath == "" {
		return
	}
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	w.appendLine(w.fullPath, rec)
}

func (w *JSONLWriter) appendLine(path string, record any) {
	line, err := json.Marshal(record)
	if err != nil {
		w.logger.Warn("marshal log record failed", zap.Error(err))
		return
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Warn("create log directory failed", zap.String("path", path), zap.Error(err))
			return
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.logger.Warn("open log file failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		w.logger.Warn("append log record failed", zap.String("path", path), zap.Error(err))
	}
}
