package hook

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Clipboard abstracts the system clipboard so the emission protocol
// (spec §4.5) can save, overwrite, verify, and restore it without
// depending on a specific OS API. This mirrors output_service.go's
// pbcopy-based CopyToClipboard, generalized across platforms the way
// the original Python implementation's pyperclip dependency did.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// osClipboard shells out to the platform clipboard utility, exactly the
// way the teacher's realOutputter shells out to pbcopy.
type osClipboard struct{}

// NewOSClipboard returns a Clipboard backed by the host OS's clipboard
// utility (pbcopy/pbpaste on macOS, xclip/xsel on Linux, clip/PowerShell
// on Windows).
func NewOSClipboard() Clipboard { return &osClipboard{} }

func (osClipboard) Write(text string) error {
	cmd, err := writeCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "clipboard write: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

func (osClipboard) Read() (string, error) {
	cmd, err := readCommand()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "clipboard read")
	}
	return out.String(), nil
}

func writeCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "windows":
		return exec.Command("clip"), nil
	case "linux":
		if path, err := exec.LookPath("xclip"); err == nil {
			return exec.Command(path, "-selection", "clipboard"), nil
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return exec.Command(path, "--clipboard", "--input"), nil
		}
		return nil, errors.New("clipboard: no xclip or xsel on PATH")
	default:
		return nil, errors.Errorf("clipboard: unsupported platform %q", runtime.GOOS)
	}
}

func readCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbpaste"), nil
	case "windows":
		return exec.Command("powershell.exe", "-NoProfile", "-Command", "Get-Clipboard"), nil
	case "linux":
		if path, err := exec.LookPath("xclip"); err == nil {
			return exec.Command(path, "-selection", "clipboard", "-o"), nil
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return exec.Command(path, "--clipboard", "--output"), nil
		}
		return nil, errors.New("clipboard: no xclip or xsel on PATH")
	default:
		return nil, errors.Errorf("clipboard: unsupported platform %q", runtime.GOOS)
	}
}
