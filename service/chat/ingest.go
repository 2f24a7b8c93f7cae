package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ChatRelay/logger"
	"ChatRelay/tools/safe"
)

// Ingestor decodes inline data-URI attachments and writes them into the
// uploads directory, returning the generated reference name.
type Ingestor struct {
	dir string
	now func() time.Time
}

func NewIngestor(dir string) *Ingestor {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Errorf("[ingest] mkdir %s: %v", dir, err)
	}
	return &Ingestor{dir: dir, now: time.Now}
}

// Ingest names the attachment <unixMilli>.<ext> and writes the decoded
// payload asynchronously. Two attachments landing on the same millisecond
// collide; callers accept that, there is no collision check. Write and
// decode failures are logged only: the returned name is handed out
// regardless, best effort by contract.
func (g *Ingestor) Ingest(f *InlineFile) string {
	parts := strings.Split(f.Name, ".")
	ext := parts[len(parts)-1]
	filename := fmt.Sprintf("%d.%s", g.now().UnixMilli(), ext)

	payload := f.Data
	if i := strings.Index(payload, ","); i >= 0 {
		// strip the data-URI header, e.g. "data:image/png;base64,"
		payload = payload[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		logger.Errorf("[ingest] decode %s: %v", f.Name, err)
		return filename
	}

	path := filepath.Join(g.dir, filename)
	safe.Go(func() {
		if werr := os.WriteFile(path, raw, 0o644); werr != nil {
			logger.Errorf("[ingest] write %s: %v", path, werr)
			return
		}
		logger.Infof("[ingest] file saved: %s", path)
	})
	return filename
}
