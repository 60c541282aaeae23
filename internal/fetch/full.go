package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/agentic-research/gale/internal/source"
	"github.com/dustin/go-humanize"
)

// progressStep is how many bytes pass between progress lines.
const progressStep = 50 << 20

// fetchFull streams the whole GRIB file to dest — the fallback when no
// selector or no index is available. No per-call timeout: full files
// run to hundreds of megabytes, so only ctx bounds the transfer.
func (d *Downloader) fetchFull(ctx context.Context, src, dest string) error {
	if !source.IsURL(src) {
		return d.copyLocal(src, dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", src, resp.StatusCode)
	}

	out, err := d.Store.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var w io.Writer = out
	if d.Verbose {
		w = io.MultiWriter(out, &progressReporter{total: resp.ContentLength, out: d.diag()})
	}
	_, err = io.Copy(w, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = d.Store.Remove(dest)
		return fmt.Errorf("download %s: %w", src, err)
	}
	return nil
}

func (d *Downloader) copyLocal(src, dest string) error {
	if src == dest {
		return nil
	}
	in, err := d.Store.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := d.Store.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = d.Store.Remove(dest)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

// progressReporter prints a line every progressStep bytes.
type progressReporter struct {
	total   int64
	done    int64
	lastAt  int64
	out     io.Writer
	started bool
}

func (p *progressReporter) Write(b []byte) (int, error) {
	if !p.started {
		p.started = true
		if p.total > 0 {
			fmt.Fprintf(p.writer(), "downloading %s\n", humanize.Bytes(uint64(p.total)))
		}
	}
	p.done += int64(len(b))
	if p.done-p.lastAt >= progressStep {
		p.lastAt = p.done
		if p.total > 0 {
			fmt.Fprintf(p.writer(), "  %s of %s (%.0f%%)\n",
				humanize.Bytes(uint64(p.done)), humanize.Bytes(uint64(p.total)),
				100*float64(p.done)/float64(p.total))
		} else {
			fmt.Fprintf(p.writer(), "  %s\n", humanize.Bytes(uint64(p.done)))
		}
	}
	return len(b), nil
}

func (p *progressReporter) writer() io.Writer {
	if p.out != nil {
		return p.out
	}
	return os.Stderr
}
