package inventory

import (
	"context"
	"fmt"
	"os/exec"
)

// wgrib2Binary is the external inventory generator probed on PATH.
// Overridable for tests.
var wgrib2Binary = "wgrib2"

// HaveWgrib2 reports whether the external wgrib2 binary is available.
// Local index synthesis is disabled without it.
func HaveWgrib2() bool {
	_, err := exec.LookPath(wgrib2Binary)
	return err == nil
}

// Synthesize runs `wgrib2 -s` on a local GRIB file and returns the
// wgrib2-dialect index text it prints. Single-shot, synchronous; stdout
// is captured in memory.
func Synthesize(ctx context.Context, gribPath string) ([]byte, error) {
	bin, err := exec.LookPath(wgrib2Binary)
	if err != nil {
		return nil, fmt.Errorf("wgrib2 not found on PATH (install it to enable local index generation): %w", err)
	}
	out, err := exec.CommandContext(ctx, bin, "-s", gribPath).Output()
	if err != nil {
		return nil, fmt.Errorf("wgrib2 -s %s: %w", gribPath, err)
	}
	return out, nil
}
