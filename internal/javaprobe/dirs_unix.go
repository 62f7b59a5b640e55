//go:build !windows

package javaprobe

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

func launcherProfileRuntimeDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "netmc-launcher", "runtime")
	}
	return filepath.Join(home, ".netmc-launcher", "runtime")
}

func systemJavaDirs() []string {
	var dirs []string
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		dirs = append(dirs, jh)
	}

	if runtime.GOOS == "darwin" {
		homeGlobs := []string{
			"/Library/Java/JavaVirtualMachines/*/Contents/Home",
			"/opt/homebrew/opt/openjdk*/libexec/openjdk.jdk/Contents/Home",
			"/usr/local/opt/openjdk*/libexec/openjdk.jdk/Contents/Home",
		}
		for _, g := range homeGlobs {
			if matches, _ := filepath.Glob(g); len(matches) > 0 {
				dirs = append(dirs, matches...)
			}
		}
		return dirs
	}

	globs := []string{
		"/usr/lib/jvm/*",
		"/usr/java/*",
		"/opt/jdk*",
	}
	for _, g := range globs {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			dirs = append(dirs, matches...)
		}
	}
	return dirs
}

// scanRegistry is a no-op off Windows: no JavaSoft registry keys exist.
func scanRegistry() []Entry {
	return nil
}

func pathJava() (string, error) {
	return exec.LookPath(ExecutableName())
}
