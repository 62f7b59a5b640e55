// Package javainstall implements the Java Installer (§4.9): a three-phase
// state machine — file list, download, register — driven by the remote
// java-runtime "all.json" index.
//
// Grounded on the teacher's
// pkg/game/folder/generator/builders/runtime.go#RuntimeBuilder: the
// all.json -> per-platform manifest -> Files map -> Type=="file" ->
// Downloads.Raw walk is the same shape this phase 1/2 describe, narrowed
// from "every platform into a shared pack" to "one platform's one
// component into runtime/<component>/, phase-gated, with cleanup on
// failure."
package javainstall

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/yuanquanya/netmc-launcher/internal/downloader"
	"github.com/yuanquanya/netmc-launcher/internal/httpclient"
	"github.com/yuanquanya/netmc-launcher/internal/javaprobe"
	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
)

const allManifestURL = "https://launchermeta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"

// componentTable is the closed major-version -> component name mapping.
var componentTable = map[int]string{
	8:  "jre-legacy",
	16: "java-runtime-alpha",
	17: "java-runtime-gamma",
	21: "java-runtime-delta",
	25: "java-runtime-epsilon",
}

// Phase names the installer's state machine position.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	Phase1      Phase = "phase1"
	Phase2      Phase = "phase2"
	Phase3      Phase = "phase3"
	PhaseDone   Phase = "done"
)

// Status is the mutable snapshot published to observers (§3 JavaStatus).
type Status struct {
	Installing bool
	Phase      Phase
	Progress   int
	Message    string
	Success    bool
	Error      string
}

// Installer drives the three-phase install on a single background
// worker (spec.md §5: a single background worker executing its phases
// sequentially).
type Installer struct {
	root string
	http *httpclient.Client
	dl   *downloader.Downloader
	idx  *javaprobe.Index
	log  hclog.Logger

	mu     sync.Mutex
	status Status

	onPhaseChanged func(Phase, string)
	onProgress     func(int, string)
	onFinished     func(bool, string)
}

func New(root string, http *httpclient.Client, idx *javaprobe.Index, log hclog.Logger) *Installer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Installer{
		root: root,
		http: http,
		dl:   downloader.New(http, log),
		idx:  idx,
		log:  log.Named("javainstall"),
		status: Status{Phase: PhaseIdle},
	}
}

// OnPhaseChanged, OnProgress and OnFinished wire the installer's
// transitions to the Event Bus (§4.11).
func (in *Installer) OnPhaseChanged(fn func(Phase, string)) { in.onPhaseChanged = fn }
func (in *Installer) OnProgress(fn func(int, string))       { in.onProgress = fn }
func (in *Installer) OnFinished(fn func(bool, string))      { in.onFinished = fn }

func (in *Installer) Status() Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status
}

func (in *Installer) setStatus(phase Phase, progress int, message string) {
	in.mu.Lock()
	in.status.Phase = phase
	in.status.Progress = progress
	in.status.Message = message
	in.mu.Unlock()

	if in.onPhaseChanged != nil {
		in.onPhaseChanged(phase, message)
	}
	if in.onProgress != nil {
		in.onProgress(progress, message)
	}
}

func (in *Installer) finish(success bool, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	in.mu.Lock()
	in.status.Installing = false
	in.status.Phase = PhaseDone
	in.status.Progress = 100
	in.status.Success = success
	in.status.Error = msg
	in.mu.Unlock()

	if in.onFinished != nil {
		in.onFinished(success, msg)
	}
}

// InstallJava runs installJava(major) asynchronously, returning
// immediately per the §6 operation table.
func (in *Installer) InstallJava(major int) {
	in.mu.Lock()
	in.status = Status{Installing: true, Phase: PhaseIdle, Progress: 0}
	in.mu.Unlock()

	go in.run(major)
}

func (in *Installer) run(major int) {
	in.setStatus(PhaseIdle, 0, "starting")

	component, ok := componentTable[major]
	if !ok {
		in.finish(false, fmt.Errorf("no managed runtime component for java %d", major))
		return
	}
	componentDir := filepath.Join(in.root, "runtime", component)

	in.setStatus(Phase1, 0, "fetching file list")
	tasks, err := in.phase1(component)
	if err != nil {
		in.finish(false, err)
		return
	}
	in.setStatus(Phase1, 3, "file list ready")

	in.setStatus(Phase2, 5, "downloading runtime files")
	if err := in.phase2(componentDir, tasks); err != nil {
		os.RemoveAll(componentDir)
		in.finish(false, err)
		return
	}
	in.setStatus(Phase2, 92, "download complete")

	in.setStatus(Phase3, 97, "registering runtime")
	if err := in.phase3(componentDir, major); err != nil {
		os.RemoveAll(componentDir)
		in.finish(false, err)
		return
	}

	in.finish(true, nil)
}

// phase1 fetches all.json, navigates to the platform+component manifest,
// and enumerates its file entries into download tasks.
func (in *Installer) phase1(component string) ([]downloader.Task, error) {
	return in.phase1Against(allManifestURL, component)
}

// phase1Against is phase1 parameterised over the runtime index URL, kept
// separate so tests can point it at a fake all.json without a network
// dependency on Mojang's real index.
func (in *Installer) phase1Against(allURL, component string) ([]downloader.Task, error) {
	body, ok := in.http.GetMirrored(allURL)
	if !ok {
		return nil, fmt.Errorf("fetch java runtime index: request failed")
	}

	var index mcmanifest.RuntimeIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("parse java runtime index: %w", err)
	}

	platform := currentPlatform()
	runtimes, ok := index[platform][component]
	if !ok || len(runtimes) == 0 {
		return nil, fmt.Errorf("no runtime for platform=%s component=%s", platform, component)
	}

	manifestBody, ok := in.http.GetMirrored(runtimes[0].Manifest.URL)
	if !ok {
		return nil, fmt.Errorf("fetch runtime manifest: request failed")
	}

	var manifest mcmanifest.JavaRuntimeManifest
	if err := json.Unmarshal(manifestBody, &manifest); err != nil {
		return nil, fmt.Errorf("parse runtime manifest: %w", err)
	}

	var tasks []downloader.Task
	componentDir := filepath.Join(in.root, "runtime", component)
	for path, file := range manifest.Files {
		if file.Type != "file" {
			continue
		}
		tasks = append(tasks, downloader.Task{
			URL:          file.Downloads.Raw.URL,
			LocalPath:    filepath.Join(componentDir, path),
			ExpectedSize: file.Downloads.Raw.Size,
			ExpectedSha1: file.Downloads.Raw.Sha1,
			Executable:   file.Executable,
		})
	}

	return tasks, nil
}

// phase2 batch-downloads tasks at concurrency 16, reporting
// 5 + (completed/total)*85 percent.
func (in *Installer) phase2(componentDir string, tasks []downloader.Task) error {
	total := len(tasks)
	if total == 0 {
		return nil
	}

	ok := in.dl.BatchDownload("installJava", tasks, 16, func(_ string, current, total int, _ string) {
		pct := 5 + current*85/total
		in.setStatus(Phase2, pct, fmt.Sprintf("downloaded %d/%d", current, total))
	})
	if !ok {
		return fmt.Errorf("one or more runtime files failed to download")
	}
	return nil
}

// phase3 probes only componentDir; on success it registers the result in
// the shared index and kicks off a background full rescan.
func (in *Installer) phase3(componentDir string, major int) error {
	_, ok := in.idx.ScanSubtree(componentDir, major)
	if !ok {
		return fmt.Errorf("no valid java %d binary found after install", major)
	}

	in.idx.RefreshAsync(nil)
	return nil
}

// currentPlatform maps runtime.GOOS/GOARCH to the all.json platform key.
func currentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		switch runtime.GOARCH {
		case "arm64":
			return "windows-arm64"
		case "386":
			return "windows-x86"
		default:
			return "windows-x64"
		}
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "mac-os-arm64"
		}
		return "mac-os"
	default:
		if runtime.GOARCH == "arm64" {
			return "linux-arm64"
		}
		return "linux"
	}
}
