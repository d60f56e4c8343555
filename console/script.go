package console

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zephyrtronium/cscript/internal"
)

// ReadScript reads an entire script. The text is UTF-8 unless it begins with
// a UTF-16 byte order mark.
func ReadScript(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OpenScript reads a script file.
func OpenScript(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	src, err := ReadScript(f)
	if err != nil {
		return "", fmt.Errorf("couldn't read %s: %w", path, err)
	}
	return src, nil
}

// RunScripts evaluates script files in order in sh, stopping at the first
// error.
func RunScripts(sh *internal.Shell, paths ...string) error {
	for _, path := range paths {
		src, err := OpenScript(path)
		if err != nil {
			return err
		}
		sh.Log.WithField("script", path).Info("running script")
		if _, err := sh.Eval(src); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
