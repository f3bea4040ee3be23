package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Output receives one formatted request/response exchange per response.
type Output interface {
	Write(name string, contents string)
}

// FilesystemOutput writes every exchange to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput empties dir so it only ever holds the exchanges of a
// single run.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(name string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "name", name, "err", err)
	}
}

// Dump writes every response client receives to output, file names are a
// sequence number followed by the last segment of the request path.
func Dump(client *resty.Client, output Output) {
	var counter atomic.Uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if res.Request.RawRequest == nil {
			return nil
		}
		id := counter.Add(1)
		output.Write(dumpName(id, res.Request.RawRequest.URL.Path), formatHttpMessage(res))
		return nil
	})
}

func dumpName(id uint64, path string) string {
	base := strings.Trim(filepath.Base(path), "/.")
	if base == "" {
		base = "index"
	}
	return fmt.Sprintf("%04d-%s.txt", id, base)
}
