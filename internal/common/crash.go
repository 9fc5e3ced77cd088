// -----------------------------------------------------------------------
// Crash Protection - Fatal panic capture with post-mortem report files
// -----------------------------------------------------------------------

package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// crashDir is where crash reports are written. Set once at startup via
// InstallCrashHandler.
var crashDir = "./logs"

// InstallCrashHandler prepares the crash report directory. Call at the very
// start of main(), paired with a deferred RecoverWithCrashFile().
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashDir = logDir
	}
	if err := os.MkdirAll(crashDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to create log directory: %v\n", err)
	}
}

// RecoverWithCrashFile recovers a panic on the current goroutine, writes a
// crash report, and exits non-zero. Usage: defer common.RecoverWithCrashFile()
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		writeCrashReport(r, currentStack())
		os.Exit(1)
	}
}

// writeCrashReport dumps the panic, stacks, and runtime state to a timestamped
// file, falling back to stderr when the file cannot be written.
func writeCrashReport(panicVal interface{}, stack string) {
	path := filepath.Join(crashDir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))

	var report bytes.Buffer
	fmt.Fprintf(&report, "valeo crash report\ntime: %s\nversion: %s\n\n",
		time.Now().Format(time.RFC3339), GetFullVersion())
	fmt.Fprintf(&report, "panic: %v\n\n%s\n", panicVal, stack)

	fmt.Fprintf(&report, "\nall goroutines:\n%s\n", allStacks())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(&report, "\nruntime: goroutines=%d cpus=%d os=%s arch=%s alloc_mb=%d sys_mb=%d gc=%d\n",
		runtime.NumGoroutine(), runtime.NumCPU(), runtime.GOOS, runtime.GOARCH,
		mem.Alloc/1024/1024, mem.Sys/1024/1024, mem.NumGC)

	// Unbuffered write; the process is about to die
	if err := os.WriteFile(path, report.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to write crash file: %v\n", err)
		fmt.Fprint(os.Stderr, report.String())
		return
	}

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - Report saved to: %s !!!\n", path)
	fmt.Fprintf(os.Stderr, "Panic: %v\n", panicVal)
}

// currentStack returns the current goroutine's stack trace.
func currentStack() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// allStacks returns stack traces for every goroutine, growing the buffer
// until the dump fits.
func allStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		if len(buf) >= 64*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
