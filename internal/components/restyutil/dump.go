// Package restyutil records what a resty client sends and receives, so a
// scraper broken by changed markup can be debugged from the raw pages.
package restyutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"comunio-manager/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const report_dump_write = "restyutil.dump-write"

// Output receives one formatted request/response exchange at a time.
type Output interface {
	Write(id string, contents string) error
}

// DirOutput writes each exchange to its own file in a directory.
type DirOutput struct {
	directory string
}

func NewDirOutput(dir string) (DirOutput, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{directory: dir}, nil
}

func (o DirOutput) Write(id string, contents string) error {
	return os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
}

// DumpResty writes every response the client receives to output, ids count
// up from 1 in the order responses arrive.
func DumpResty(client *resty.Client, output Output, tel telemetry.API) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%03d", atomic.AddUint64(&idcounter, 1))
		err := output.Write(id, formatHttpMessage(res))
		if err != nil {
			tel.ReportWarning(report_dump_write, err, id)
		}
		return nil
	})
}
