// Package launch implements the Launch Pipeline (§4.10): an eight-step
// orchestrator turning a declarative version manifest into a spawned
// game process.
//
// Grounded on the teacher's game/launcher/launcher.go (Run,
// runInSeparatedThread, logWriter) for process assembly/spawning and
// arguments.go (LauncherArgumentParser) for placeholder substitution.
package launch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/yuanquanya/netmc-launcher/internal/archiveutil"
	"github.com/yuanquanya/netmc-launcher/internal/catalogue"
	"github.com/yuanquanya/netmc-launcher/internal/downloader"
	"github.com/yuanquanya/netmc-launcher/internal/javaprobe"
	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
	"github.com/yuanquanya/netmc-launcher/internal/rules"
	"github.com/yuanquanya/netmc-launcher/internal/workspace"
)

// ExitCode mirrors §6's launch return codes.
type ExitCode int

const (
	ExitOK         ExitCode = 0
	ExitGeneric    ExitCode = 1
	ExitJavaMissing ExitCode = 2
)

// Priority mirrors the §6 process priority codes.
type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityLow    Priority = "Low"
)

// Request is launch(id, username, memoryMB, customCmd?, priority?)'s input.
type Request struct {
	VersionID  string
	VersionURL string
	Username   string
	MemoryMB   int
	CustomCmd  string
	Priority   Priority
}

// Context is the transient per-launch record (§3 LaunchContext).
type Context struct {
	Request Request

	Manifest   *mcmanifest.VersionManifest
	JavaPath   string
	NativesDir string
	ClassPath  string
	JVMArgs    []string
	GameArgs   []string

	RequiredJavaMajor int

	nativeArtifacts []*mcmanifest.Artifact

	cmd *exec.Cmd
}

// Pipeline wires every component the launch steps need.
type Pipeline struct {
	layout     workspace.Layout
	catalogue  *catalogue.Catalogue
	javaIndex  *javaprobe.Index
	downloader *downloader.Downloader
	log        hclog.Logger

	onLog         func(string)
	onGameStarted func()
	onGameExited  func(int)
	onWindowReady func()
}

func New(layout workspace.Layout, cat *catalogue.Catalogue, idx *javaprobe.Index, dl *downloader.Downloader, log hclog.Logger) *Pipeline {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Pipeline{layout: layout, catalogue: cat, javaIndex: idx, downloader: dl, log: log.Named("launch")}
}

func (p *Pipeline) OnLog(fn func(string))          { p.onLog = fn }
func (p *Pipeline) OnGameStarted(fn func())         { p.onGameStarted = fn }
func (p *Pipeline) OnGameExited(fn func(int))       { p.onGameExited = fn }
func (p *Pipeline) OnWindowReady(fn func())         { p.onWindowReady = fn }

func (p *Pipeline) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.log.Info(msg)
	if p.onLog != nil {
		p.onLog(msg)
	}
}

// Launch runs steps 1..7 synchronously and step 8 in the background,
// returning the §6 exit code.
func (p *Pipeline) Launch(req Request) (ExitCode, error) {
	ctx := &Context{Request: req}

	code, err := p.checkJava(ctx)
	if err != nil || code != ExitOK {
		return code, err
	}

	if err := p.fixFiles(ctx); err != nil {
		return ExitGeneric, err
	}

	p.extractNatives(ctx)

	p.constructArguments(ctx)

	p.preRun(ctx)

	p.customCommands(ctx)

	if err := p.launchProcess(ctx); err != nil {
		return ExitGeneric, err
	}

	go p.watch(ctx)

	return ExitOK, nil
}

// step 1: CheckJava
func (p *Pipeline) checkJava(ctx *Context) (ExitCode, error) {
	manifest, err := p.catalogue.GetManifest(ctx.Request.VersionID, ctx.Request.VersionURL)
	if err != nil {
		return ExitGeneric, fmt.Errorf("load manifest: %w", err)
	}
	ctx.Manifest = manifest
	ctx.RequiredJavaMajor = manifest.RequiredJavaMajor()

	if p.javaIndex.Empty() {
		p.javaIndex.RefreshSync()
	}

	entry, ok := p.javaIndex.FindBest(ctx.RequiredJavaMajor)
	if !ok {
		p.logf("no compatible java found for major %d", ctx.RequiredJavaMajor)
		return ExitJavaMissing, nil
	}

	ctx.JavaPath = entry.Path
	return ExitOK, nil
}

// step 2: FixFiles
func (p *Pipeline) fixFiles(ctx *Context) error {
	m := ctx.Manifest
	var tasks []downloader.Task
	var classPathParts []string
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}

	for _, lib := range m.Libraries {
		if !rules.Allows(lib.Rules) {
			continue
		}

		if artifact := lib.Downloads.Artifact; artifact != nil {
			dest := p.layout.LibraryPath(artifact.Path)
			tasks = append(tasks, downloader.Task{
				URL: artifact.URL, LocalPath: dest,
				ExpectedSize: artifact.Size, ExpectedSha1: artifact.Sha1,
			})
			classPathParts = append(classPathParts, dest)
		}

		if classifiers := lib.Downloads.Classifiers; classifiers != nil {
			if artifact := selectNativeClassifier(classifiers); artifact != nil {
				dest := p.layout.LibraryPath(artifact.Path)
				tasks = append(tasks, downloader.Task{
					URL: artifact.URL, LocalPath: dest,
					ExpectedSize: artifact.Size, ExpectedSha1: artifact.Sha1,
				})
				ctx.nativeArtifacts = append(ctx.nativeArtifacts, artifact)
			}
		}
	}

	ctx.ClassPath = strings.Join(classPathParts, sep) + sep + p.layout.VersionJar(m.ID)

	if clientArtifact, ok := m.Downloads["client"]; ok {
		tasks = append(tasks, downloader.Task{
			URL: clientArtifact.URL, LocalPath: p.layout.VersionJar(m.ID),
			ExpectedSize: clientArtifact.Size, ExpectedSha1: clientArtifact.Sha1,
		})
	}

	assetIndexPath := p.layout.AssetIndexPath(assetID(m))
	tasks = append(tasks, downloader.Task{
		URL: m.AssetIndex.URL, LocalPath: assetIndexPath,
		ExpectedSize: m.AssetIndex.Size, ExpectedSha1: m.AssetIndex.Sha1,
	})

	ok := p.downloader.BatchDownload("libraries", tasks, 32, func(_ string, current, total int, _ string) {
		p.log.Debug("fixFiles progress", "current", current, "total", total)
	})
	if !ok {
		p.logf("one or more files failed to download during FixFiles")
	}

	return p.scheduleAssetObjects(ctx, assetIndexPath)
}

func (p *Pipeline) scheduleAssetObjects(ctx *Context, assetIndexPath string) error {
	body, err := os.ReadFile(assetIndexPath)
	if err != nil {
		p.logf("asset index did not materialise, skipping asset objects")
		return nil
	}

	var idx mcmanifest.AssetIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return fmt.Errorf("parse asset index: %w", err)
	}

	var tasks []downloader.Task
	for _, obj := range idx.Objects {
		dest := p.layout.AssetObjectPath(obj.Hash)
		url := "https://resources.download.minecraft.net/" + obj.Hash[:2] + "/" + obj.Hash
		tasks = append(tasks, downloader.Task{URL: url, LocalPath: dest, ExpectedSize: obj.Size, ExpectedSha1: obj.Hash})
	}

	ok := p.downloader.BatchDownload("assets", tasks, 32, func(_ string, current, total int, _ string) {
		p.log.Debug("asset objects progress", "current", current, "total", total)
	})
	if !ok {
		p.logf("one or more asset objects failed to download")
	}
	return nil
}

func assetID(m *mcmanifest.VersionManifest) string {
	if m.Assets != "" {
		return m.Assets
	}
	return "legacy"
}

func selectNativeClassifier(classifiers map[string]*mcmanifest.Artifact) *mcmanifest.Artifact {
	osTag := rules.OSTag()
	if a, ok := classifiers["natives-"+osTag]; ok {
		return a
	}
	archSuffix := map[string]string{"amd64": "64", "arm64": "arm64", "386": "32"}[runtime.GOARCH]
	if archSuffix != "" {
		if a, ok := classifiers["natives-"+osTag+"-"+archSuffix]; ok {
			return a
		}
	}
	return nil
}

// step 3: ExtractNatives. Idempotent within one launch: a marker file
// keyed by the first 8 hex chars of the library's SHA1 prevents
// re-extraction; extraction failures are warnings, not errors, since
// the files may be locked by another running game.
func (p *Pipeline) extractNatives(ctx *Context) {
	ctx.NativesDir = p.layout.NativesDir(ctx.Manifest.ID)
	if err := os.MkdirAll(ctx.NativesDir, 0o755); err != nil {
		p.logf("failed to create natives dir: %v", err)
		return
	}

	for _, artifact := range ctx.nativeArtifacts {
		marker := filepath.Join(ctx.NativesDir, ".extracted_"+artifact.Sha1[:8])
		if _, err := os.Stat(marker); err == nil {
			continue
		}

		jarPath := p.layout.LibraryPath(artifact.Path)
		if !archiveutil.Extract(jarPath, ctx.NativesDir) {
			p.logf("warning: failed to extract natives from %s (may be locked)", jarPath)
			continue
		}
		os.WriteFile(marker, nil, 0o644)
	}
}

// step 5: PreRun. Best-effort environment fixups; every failure here is a
// warning, never an abort, since a launch should still proceed without them.
func (p *Pipeline) preRun(ctx *Context) {
	p.fixOptionsLang(ctx)
	p.upsertLauncherProfile(ctx)
	p.applyGpuPreference(ctx)
}

func (p *Pipeline) fixOptionsLang(ctx *Context) {
	path := filepath.Join(p.layout.Root, "options.txt")

	body, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if !strings.Contains(string(body), "lang:zh_CN") {
		return
	}
	fixed := strings.ReplaceAll(string(body), "lang:zh_CN", "lang:zh_cn")
	if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
		p.logf("failed to rewrite options.txt: %v", err)
	}
}

type launcherProfile struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	LastVersionID string `json:"lastVersionId"`
}

type launcherProfiles struct {
	Profiles        map[string]launcherProfile `json:"profiles"`
	Authentication  map[string]any             `json:"authenticationDatabase"`
	SelectedProfile string                     `json:"selectedProfile,omitempty"`
}

// upsertLauncherProfile writes a launcher_profiles.json compatible with
// mods (Forge/OptiFine installers) that read it to detect a managed
// launcher, keyed under "PCL2-Qt" per convention (§4.10 step 5).
func (p *Pipeline) upsertLauncherProfile(ctx *Context) {
	path := filepath.Join(p.layout.Root, "launcher_profiles.json")

	profiles := launcherProfiles{
		Profiles:       map[string]launcherProfile{},
		Authentication: map[string]any{},
	}
	if body, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(body, &profiles)
	}
	if profiles.Profiles == nil {
		profiles.Profiles = map[string]launcherProfile{}
	}
	if profiles.Authentication == nil {
		profiles.Authentication = map[string]any{}
	}

	profiles.Profiles["PCL2-Qt"] = launcherProfile{
		Name:          "PCL2-Qt",
		Type:          "latest-release",
		LastVersionID: ctx.Manifest.ID,
	}

	body, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		p.logf("failed to marshal launcher_profiles.json: %v", err)
		return
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		p.logf("failed to write launcher_profiles.json: %v", err)
	}
}

// step 6: CustomCommands
func (p *Pipeline) customCommands(ctx *Context) {
	cmdStr := ctx.Request.CustomCmd
	if cmdStr == "" {
		return
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", cmdStr)
	} else {
		cmd = exec.Command("/bin/sh", "-c", cmdStr)
	}
	cmd.Dir = p.layout.Root

	done := make(chan error, 1)
	_ = cmd.Start()
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			p.logf("custom pre-launch command warning: %v", err)
		}
	case <-time.After(30 * time.Second):
		_ = cmd.Process.Kill()
		p.logf("custom pre-launch command timed out after 30s")
	}
}

// step 7: LaunchProcess assembles argv, spawns java, relays its stdout and
// stderr as log lines and publishes gameStarted.
func (p *Pipeline) launchProcess(ctx *Context) error {
	argv := append(append([]string{}, ctx.JVMArgs...), ctx.GameArgs...)
	cmd := exec.Command(ctx.JavaPath, argv...)
	cmd.Dir = p.layout.Root
	cmd.Env = p.launchEnv(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("attach stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start java process: %w", err)
	}
	ctx.cmd = cmd

	p.applyPriority(ctx)

	go relayLines(stdout, "[MC] ", p.onLog)
	go relayLines(stderr, "[MC-ERR] ", p.onLog)

	if p.onGameStarted != nil {
		p.onGameStarted()
	}
	return nil
}

func (p *Pipeline) launchEnv(ctx *Context) []string {
	env := os.Environ()
	javaBinDir := filepath.Dir(ctx.JavaPath)
	pathSep := ":"
	if runtime.GOOS == "windows" {
		pathSep = ";"
	}
	env = append(env, "PATH="+javaBinDir+pathSep+os.Getenv("PATH"))
	env = append(env, "APPDATA="+p.layout.Root)
	return env
}

func relayLines(r io.Reader, prefix string, onLog func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLog != nil {
			onLog(prefix + scanner.Text())
		}
	}
}

// step 8: Watch waits for the process to exit, however long that takes,
// and publishes gameExited. The 180s cap applies only to gameWindowReady
// detection, handled independently by watchWindow (see launch_windows.go).
func (p *Pipeline) watch(ctx *Context) {
	if ctx.cmd == nil {
		return
	}

	go p.watchWindow(ctx)

	err := ctx.cmd.Wait()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}
	if p.onGameExited != nil {
		p.onGameExited(code)
	}
}

