package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"attachbridge/internal/model"
)

// Mailer opens the native mail client with one file attached.
// Implementations return *model.Error values.
type Mailer interface {
	// Platform is the host name as shown to users, e.g. "Darwin".
	Platform() string
	// Open checks its own preconditions in order: a mailer that cannot run
	// on this host fails before looking at filePath, one that can reports a
	// missing file with model.ErrNotFound before starting anything.
	Open(ctx context.Context, filePath string) error
}

func requireFile(filePath string) error {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return model.NewError(model.ErrNotFound, "File not found: "+filePath)
	}
	return nil
}

// ForPlatform returns the Mailer for a GOOS value.
func ForPlatform(goos string, runner Runner) Mailer {
	switch goos {
	case "darwin":
		return &appleScriptMailer{runner: runner}
	case "windows":
		return &comMailer{runner: runner}
	default:
		return unsupportedMailer{platform: platformName(goos)}
	}
}

const appleScriptTemplate = `tell application "Microsoft Outlook"
	activate
	set newMessage to make new outgoing message
	tell newMessage
		make new attachment with properties {file:POSIX file "%s"}
	end tell
	open newMessage
end tell`

var appleScriptQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

type appleScriptMailer struct {
	runner Runner
}

func (m *appleScriptMailer) Platform() string { return "Darwin" }

func (m *appleScriptMailer) Open(ctx context.Context, filePath string) error {
	if err := requireFile(filePath); err != nil {
		return err
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return model.NewError(model.ErrAutomation, "Error: "+err.Error())
	}

	bin, err := m.runner.LookPath("osascript")
	if err != nil {
		return model.NewError(model.ErrDependencyMissing, "AppleScript bridge not installed: osascript not found")
	}

	script := fmt.Sprintf(appleScriptTemplate, appleScriptQuoter.Replace(abs))
	res, err := m.runner.Run(ctx, bin, "-e", script)
	return bridgeError(res, err, "AppleScript error: ")
}

// The COM side goes through PowerShell's COM interop, which ships with every
// supported Windows release.
const comScriptTemplate = `$ErrorActionPreference = 'Stop'
$outlook = New-Object -ComObject Outlook.Application
$mail = $outlook.CreateItem(0)
[void]$mail.Attachments.Add('%s')
$mail.Display()`

type comMailer struct {
	runner Runner
}

func (m *comMailer) Platform() string { return "Windows" }

func (m *comMailer) Open(ctx context.Context, filePath string) error {
	if err := requireFile(filePath); err != nil {
		return err
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return model.NewError(model.ErrAutomation, "Error: "+err.Error())
	}
	abs = strings.ReplaceAll(abs, "/", `\`)

	bin, err := m.runner.LookPath("powershell")
	if err != nil {
		return model.NewError(model.ErrDependencyMissing, "Outlook COM bridge not installed: powershell not found")
	}

	script := fmt.Sprintf(comScriptTemplate, strings.ReplaceAll(abs, "'", "''"))
	res, err := m.runner.Run(ctx, bin, "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script)
	return bridgeError(res, err, "Error: ")
}

type unsupportedMailer struct {
	platform string
}

func (m unsupportedMailer) Platform() string { return m.platform }

func (m unsupportedMailer) Open(context.Context, string) error {
	return model.NewError(model.ErrUnsupportedPlatform, "Unsupported platform: "+m.platform)
}

func bridgeError(res Result, err error, prefix string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return model.NewError(model.ErrTimeout, "Timeout opening Outlook")
	case err != nil:
		return model.NewError(model.ErrAutomation, "Error: "+err.Error())
	case res.ExitCode != 0:
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = "Unknown error"
		}
		return model.NewError(model.ErrAutomation, prefix+msg)
	}
	return nil
}

// platformName mirrors the capitalised names users know from uname.
func platformName(goos string) string {
	switch goos {
	case "":
		return "Unknown"
	case "darwin":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "netbsd":
		return "NetBSD"
	case "openbsd":
		return "OpenBSD"
	case "dragonfly":
		return "DragonFly"
	case "aix":
		return "AIX"
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}
