package paper

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"emaswitch-go/internal/execution"
)

// JSONLRecorder appends fills as JSON lines for later analysis.
type JSONLRecorder struct {
	mu   sync.Mutex
	log  zerolog.Logger
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string, log zerolog.Logger) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(file)
	return &JSONLRecorder{
		log:  log,
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

// Record writes a single fill; encode failures are logged, never returned to the trading loop.
func (r *JSONLRecorder) Record(fill execution.Fill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	if err := r.enc.Encode(fill); err != nil {
		r.log.Warn().Err(err).Int("seq", fill.Seq).Msg("record fill")
	}
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	flushErr := r.buf.Flush()
	err := r.file.Close()
	r.file = nil
	if flushErr != nil {
		return flushErr
	}
	return err
}
