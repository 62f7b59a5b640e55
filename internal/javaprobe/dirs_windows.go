//go:build windows

package javaprobe

import (
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

func launcherProfileRuntimeDir() string {
	appdata := os.Getenv("APPDATA")
	if appdata == "" {
		return ""
	}
	return filepath.Join(appdata, "netmc-launcher", "runtime")
}

func systemJavaDirs() []string {
	var dirs []string
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		dirs = append(dirs, jh)
	}

	roots := []string{
		os.Getenv("ProgramFiles"),
		os.Getenv("ProgramFiles(x86)"),
	}
	vendorGlobs := []string{
		"Java/*",
		"Eclipse Adoptium/jdk-*",
		"AdoptOpenJDK/jdk-*",
		"BellSoft/LibericaJDK-*",
		"Zulu/zulu*",
		"Microsoft/jdk-*",
		"Amazon Corretto/jdk*",
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		for _, g := range vendorGlobs {
			if matches, _ := filepath.Glob(filepath.Join(root, g)); len(matches) > 0 {
				dirs = append(dirs, matches...)
			}
		}
	}
	return dirs
}

// javaSoftRoots are the registry keys the standard launcher consults to
// discover JDK/JRE install roots (§4.8 Scan step 4).
var javaSoftRoots = []string{
	`SOFTWARE\JavaSoft\Java Development Kit`,
	`SOFTWARE\JavaSoft\Java Runtime Environment`,
	`SOFTWARE\JavaSoft\JDK`,
	`SOFTWARE\JavaSoft\JRE`,
}

func scanRegistry() []Entry {
	var out []Entry
	for _, root := range javaSoftRoots {
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, root, registry.READ)
		if err != nil {
			continue
		}
		versions, err := k.ReadSubKeyNames(-1)
		k.Close()
		if err != nil {
			continue
		}

		for _, v := range versions {
			vk, err := registry.OpenKey(registry.LOCAL_MACHINE, root+`\`+v, registry.READ)
			if err != nil {
				continue
			}
			home, _, err := vk.GetStringValue("JavaHome")
			vk.Close()
			if err != nil || home == "" {
				continue
			}
			out = append(out, scanDir(home)...)
		}
	}
	return out
}

func pathJava() (string, error) {
	return exec.LookPath(ExecutableName())
}
