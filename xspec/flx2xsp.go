package xspec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"
)

const (
	// ConverterAlias is the HEASoft tool turning a flux table into a
	// spectrum/response pair.
	ConverterAlias = "flx2xsp"

	DefaultTimeout = 5 * time.Minute
)

// DefaultEnv keeps HEASoft tools from prompting on /dev/tty.
// https://heasarc.gsfc.nasa.gov/lheasoft/scripting.html
func DefaultEnv() map[string]string {
	return map[string]string{
		"HEADASNOQUERY": "",
		"HEADASPROMPT":  "/dev/null",
	}
}

// Converter runs flx2xsp. The zero value runs "flx2xsp" from PATH with
// DefaultEnv and DefaultTimeout.
type Converter struct {
	// Binary overrides the tool name or path.
	Binary string
	// Env is added to the environment of the tool only. Nil means DefaultEnv.
	Env map[string]string
	// Timeout bounds a single run. Zero means DefaultTimeout, negative
	// disables the timeout.
	Timeout time.Duration
}

func (c *Converter) binary() string {
	if c == nil || c.Binary == "" {
		return ConverterAlias
	}
	return c.Binary
}

func (c *Converter) env() []string {
	overrides := DefaultEnv()
	if c != nil && c.Env != nil {
		overrides = c.Env
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}

func (c *Converter) timeout() time.Duration {
	if c == nil || c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Run converts the flux table in to the spectrum file pha and the response
// file rsp. It blocks until the tool exits, ctx is done or the timeout
// expires. A non-zero exit is an error carrying the tool's stderr and
// wrapping the *exec.ExitError; an expired timeout or a cancelled ctx also
// wraps the context error.
func (c *Converter) Run(ctx context.Context, in, pha, rsp string) error {
	if timeout := c.timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.binary(), in, pha, rsp)
	cmd.Env = c.env()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	glog.Infof("Running %s: %q\n", ConverterAlias, cmd)
	err := cmd.Run()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		glog.V(2).Infof("%s output: %s", ConverterAlias, out)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%w)", ctxErr, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s failed: %w: %s", ConverterAlias, in, err, msg)
		}
		return fmt.Errorf("%s %s failed: %w", ConverterAlias, in, err)
	}
	return nil
}
