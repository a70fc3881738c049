package webdriver

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// geckodriverPaths lists where a geckodriver binary is expected per
// platform, most-preferred first. The container image installs it at
// /usr/local/bin/geckodriver; the remaining entries cover local
// development machines.
func geckodriverPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/usr/local/bin/geckodriver",
			"/opt/homebrew/bin/geckodriver",
			"geckodriver",
		}
	case "windows":
		return []string{
			`C:\tools\geckodriver\geckodriver.exe`,
			"geckodriver.exe",
		}
	default:
		return []string{
			"/usr/local/bin/geckodriver",
			"/usr/bin/geckodriver",
			"geckodriver",
		}
	}
}

// findDriverBinary returns the first resolvable geckodriver path, or an
// error naming everything that was probed.
func findDriverBinary() (string, error) {
	paths := geckodriverPaths()
	for _, path := range paths {
		if resolved, err := exec.LookPath(path); err == nil {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("geckodriver not found at any of: %v", paths)
}

// LocalDriver is a driver process started by this service for local
// runs without a remote WebDriver endpoint.
type LocalDriver struct {
	URL string
	cmd *exec.Cmd
}

// StartLocal launches geckodriver on the given port and waits until its
// status endpoint answers. The returned LocalDriver must be stopped to
// reap the child process.
func StartLocal(ctx context.Context, port int, logger *slog.Logger) (*LocalDriver, error) {
	binary, err := findDriverBinary()
	if err != nil {
		return nil, err
	}

	logger.Info("starting local driver", "binary", binary, "port", port)
	cmd := exec.Command(binary, "--port", fmt.Sprintf("%d", port))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", binary, err)
	}

	driver := &LocalDriver{
		URL: fmt.Sprintf("http://127.0.0.1:%d", port),
		cmd: cmd,
	}

	// The driver needs a moment to bind its port before it accepts
	// session requests.
	client := New(driver.URL)
	deadline := time.Now().Add(10 * time.Second)
	for {
		if err := client.Status(ctx); err == nil {
			return driver, nil
		}
		if time.Now().After(deadline) {
			driver.Stop()
			return nil, fmt.Errorf("driver at %s did not become ready", driver.URL)
		}
		select {
		case <-ctx.Done():
			driver.Stop()
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Stop terminates the driver process. Safe to call on an already-stopped
// driver.
func (d *LocalDriver) Stop() {
	if d == nil || d.cmd == nil || d.cmd.Process == nil {
		return
	}
	_ = d.cmd.Process.Kill()
	_ = d.cmd.Wait()
}
