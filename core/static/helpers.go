package static

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// checkDir fails unless path exists and is a directory.
func checkDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("static folder does not exist: %s", path)
	case err != nil:
		return fmt.Errorf("static folder is not accessible: %w", err)
	case !info.IsDir():
		return fmt.Errorf("static folder is not a directory: %s", path)
	}
	return nil
}

// filesOnly serves regular files and reports directories as missing,
// so neither listings nor index pages leak out of a static folder.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
