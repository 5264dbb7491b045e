package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MakeRunDir creates logs/<module>/<DD.MM.YYYY>/<module>_<HH-MM-SS>.
func MakeRunDir(base, module string, now time.Time) (string, error) {
	date := now.Format("02.01.2006")
	name := module + "_" + now.Format("15-04-05")

	dir := filepath.Join(base, module, date, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return dir, nil
}

func OpenAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
