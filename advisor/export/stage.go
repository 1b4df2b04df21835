package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Stage holds rendered artifacts in memory until Commit. Rendering errors surface
// before anything touches the output directory.
type Stage struct {
	names []string
	files map[string][]byte
}

// NewStage creates an empty Stage.
func NewStage() *Stage {
	return &Stage{files: make(map[string][]byte)}
}

// Add renders an artifact. Names are base file names and must be unique.
func (s *Stage) Add(name string, render func(io.Writer) error) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("artifact name %q must be a plain file name", name)
	}
	if _, ok := s.files[name]; ok {
		return fmt.Errorf("artifact %q staged twice", name)
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	s.names = append(s.names, name)
	s.files[name] = buf.Bytes()
	return nil
}

// Names returns the staged artifact names in staging order.
func (s *Stage) Names() []string {
	return append([]string(nil), s.names...)
}

// Bytes returns a staged artifact's content.
func (s *Stage) Bytes(name string) ([]byte, bool) {
	b, ok := s.files[name]
	return b, ok
}

// rename is swapped in tests to simulate a failing filesystem.
var rename = os.Rename

// Commit writes every artifact into dir. Each file is first written to a temp
// file in dir. Existing artifacts of an earlier run are moved aside before the
// temp files are renamed into place, and moved back if any step fails, so a
// failed commit leaves dir exactly as it was.
func (s *Stage) Commit(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, name := range s.names {
		info, err := os.Lstat(filepath.Join(dir, name))
		if err == nil && !info.Mode().IsRegular() {
			return fmt.Errorf("output %s exists and is not a regular file", filepath.Join(dir, name))
		}
	}

	temps := make(map[string]string, len(s.names))
	backups := make(map[string]string)
	var placed []string
	rollback := func() {
		for _, final := range placed {
			_ = os.Remove(final)
		}
		for final, bak := range backups {
			_ = rename(bak, final)
		}
		for _, tmp := range temps {
			_ = os.Remove(tmp)
		}
	}

	for _, name := range s.names {
		tmp, err := writeTemp(dir, "."+name+".*.tmp", s.files[name])
		if err != nil {
			rollback()
			return fmt.Errorf("writing %s: %w", name, err)
		}
		temps[name] = tmp
	}

	for _, name := range s.names {
		final := filepath.Join(dir, name)
		if _, err := os.Lstat(final); err == nil {
			bak, err := writeTemp(dir, "."+name+".*.bak", nil)
			if err != nil {
				rollback()
				return fmt.Errorf("reserving backup for %s: %w", name, err)
			}
			if err := rename(final, bak); err != nil {
				_ = os.Remove(bak)
				rollback()
				return fmt.Errorf("moving previous %s aside: %w", name, err)
			}
			backups[final] = bak
		}
		if err := rename(temps[name], final); err != nil {
			rollback()
			return fmt.Errorf("moving %s into place: %w", name, err)
		}
		placed = append(placed, final)
		delete(temps, name)
	}

	for _, bak := range backups {
		_ = os.Remove(bak)
	}
	logrus.Infof("Wrote %d artifacts to %s", len(s.names), dir)
	return nil
}

func writeTemp(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
