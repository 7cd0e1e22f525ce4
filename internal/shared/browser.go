package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the command line that opens url on the current platform.
func browserCommand(url string) ([]string, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return []string{"open", url}, nil
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", url}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}, nil
	default:
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrInvalidArgument, rt)
	}
}

// OpenBrowser starts the default system browser on url without waiting for it.
func OpenBrowser(url string) error {
	args, err := browserCommand(url)
	if err != nil {
		return err
	}

	if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
