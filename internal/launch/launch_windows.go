//go:build windows

package launch

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// applyGpuPreference asks Windows to prefer the discrete GPU for the java
// binary about to be launched, keyed by its full path (§4.10 step 5).
// Failure is a warning: the key may be missing on older Windows builds.
func (p *Pipeline) applyGpuPreference(ctx *Context) {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, `Software\Microsoft\DirectX\UserGpuPreferences`, registry.SET_VALUE)
	if err != nil {
		p.logf("gpu preference: open registry key: %v", err)
		return
	}
	defer k.Close()

	if err := k.SetStringValue(ctx.JavaPath, "GpuPreference=2;"); err != nil {
		p.logf("gpu preference: set value: %v", err)
	}
}

func priorityClass(p Priority) uint32 {
	switch p {
	case PriorityHigh:
		return windows.HIGH_PRIORITY_CLASS
	case PriorityLow:
		return windows.IDLE_PRIORITY_CLASS
	default:
		return windows.NORMAL_PRIORITY_CLASS
	}
}

func (p *Pipeline) applyPriority(ctx *Context) {
	if ctx.Request.Priority == "" || ctx.Request.Priority == PriorityNormal {
		return
	}
	if ctx.cmd == nil || ctx.cmd.Process == nil {
		return
	}

	handle, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION, false, uint32(ctx.cmd.Process.Pid))
	if err != nil {
		p.logf("failed to open process for priority: %v", err)
		return
	}
	defer windows.CloseHandle(handle)

	if err := windows.SetPriorityClass(handle, priorityClass(ctx.Request.Priority)); err != nil {
		p.logf("failed to set process priority: %v", err)
	}
}

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetWindowThreadPid  = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procGetWindowTextLength = user32.NewProc("GetWindowTextLengthW")
)

// watchWindow polls for a visible, titled top-level window owned by the
// spawned process and publishes gameWindowReady on the first sighting
// (§4.10 step 8, Windows-only per the open-question resolution).
func (p *Pipeline) watchWindow(ctx *Context) {
	if ctx.cmd == nil || ctx.cmd.Process == nil {
		return
	}
	targetPid := uint32(ctx.cmd.Process.Pid)

	deadline := time.After(180 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if hasVisibleWindow(targetPid) {
				if p.onWindowReady != nil {
					p.onWindowReady()
				}
				return
			}
		}
	}
}

func hasVisibleWindow(targetPid uint32) bool {
	found := false
	cb := syscall.NewCallback(func(hwnd syscall.Handle, _ uintptr) uintptr {
		var pid uint32
		procGetWindowThreadPid.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
		if pid != targetPid {
			return 1
		}
		visible, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
		if visible == 0 {
			return 1
		}
		length, _, _ := procGetWindowTextLength.Call(uintptr(hwnd))
		if length == 0 {
			return 1
		}
		found = true
		return 0
	})
	procEnumWindows.Call(cb, 0)
	return found
}
