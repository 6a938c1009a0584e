package coloring

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external tool and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return out.Bytes(), fmt.Errorf("%s: %w", name, err)
		}

		return out.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return out.Bytes(), nil
}

// Tools holds the executables the pipeline shells out to.
type Tools struct {
	Inkscape string
	Magick   string
	Potrace  string
}

// ResolveMagick returns bin when set, otherwise "magick" if it is on PATH
// and the legacy "convert" entry point if not.
func ResolveMagick(bin string) string {
	if bin != "" {
		return bin
	}

	if _, err := exec.LookPath("magick"); err == nil {
		return "magick"
	}

	return "convert"
}
