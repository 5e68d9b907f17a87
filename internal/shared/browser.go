package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// OpenBrowser opens url in the user's browser for the login redirect.
//
// $BROWSER wins when set; otherwise the platform opener is used (macOS, Linux, Windows).
func OpenBrowser(url string) error {
	cmd, err := browserCommand(runtime.GOOS, os.Getenv("BROWSER"), url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait()

	return nil
}

// browserCommand builds the command that opens url. browser is a $BROWSER style value:
// a program, optionally with arguments, where "%s" marks the url's position.
func browserCommand(goos, browser, url string) (*exec.Cmd, error) {
	if fields := strings.Fields(browser); len(fields) > 0 {
		args := fields[1:]
		placed := false
		for i, a := range args {
			if strings.Contains(a, "%s") {
				args[i] = strings.ReplaceAll(a, "%s", url)
				placed = true
			}
		}
		if !placed {
			args = append(args, url)
		}
		return exec.Command(fields[0], args...), nil
	}

	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("%w: cannot open a browser on %s; set $BROWSER or open the URL manually", ErrNotImplemented, goos)
	}
}
