// Package console detects how the program was started and installs a Ctrl+C
// handler that still fires while SDL holds a locked OS thread.
package console

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
	ctrlCloseEvent = 2
)

// IsRunningFromConsole reports whether the program was started from a
// terminal. A double-click from Explorer returns false and releases any
// console Windows created for the process. A GUI build started from a
// terminal gets its own console window and std streams.
func IsRunningFromConsole() bool {
	fromExplorer := isLaunchedFromExplorer()

	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}

	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// redirectStdStreams points os.Stdout, os.Stderr and os.Stdin at a newly
// allocated console. Loggers created afterwards pick them up.
func redirectStdStreams() {
	stdout, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil || stdout == 0 {
		return
	}
	stderr, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || stderr == 0 {
		return
	}
	os.Stdout = os.NewFile(uintptr(stdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(stderr), "/dev/stderr")
	if stdin, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE); err == nil && stdin != 0 {
		os.Stdin = os.NewFile(uintptr(stdin), "/dev/stdin")
	}
}

func isLaunchedFromExplorer() bool {
	name := processImageName(uint32(os.Getppid()))
	return isExplorerExe(name)
}

func processImageName(pid uint32) string {
	if pid == 0 {
		return ""
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	var buf [windows.MAX_PATH]uint16
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

func isExplorerExe(path string) bool {
	return strings.EqualFold(filepath.Base(path), "explorer.exe")
}

var (
	handlerMu       sync.Mutex
	handlerCallback uintptr
	handlerOnce     sync.Once
	handlerShutdown chan struct{}
)

// SetupConsoleHandler closes shutdown on Ctrl+C, Ctrl+Break or console close.
// The returned function re-registers the handler; call it after initializing
// libraries that install their own (SDL does).
func SetupConsoleHandler(shutdown chan struct{}, logger *slog.Logger) func() {
	handlerMu.Lock()
	defer handlerMu.Unlock()

	handlerShutdown = shutdown
	if handlerCallback == 0 {
		handlerCallback = windows.NewCallback(func(ctrlType uint32) uintptr {
			switch ctrlType {
			case ctrlCEvent, ctrlBreakEvent, ctrlCloseEvent:
				handlerOnce.Do(func() { close(handlerShutdown) })
				return 1
			}
			return 0
		})
	}

	register := func() {
		if ret, _, err := procSetConsoleCtrlHandler.Call(handlerCallback, 1); ret == 0 {
			logger.Warn("failed to set console control handler", "error", err)
		}
	}
	register()
	return register
}
