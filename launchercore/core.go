// Package launchercore assembles every component into the single
// entry point a CLI shell (or any other embedder) drives: init, list
// versions, launch, install java, and subscribe to progress events
// (§6 operation table).
package launchercore

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/yuanquanya/netmc-launcher/internal/catalogue"
	"github.com/yuanquanya/netmc-launcher/internal/downloader"
	"github.com/yuanquanya/netmc-launcher/internal/eventbus"
	"github.com/yuanquanya/netmc-launcher/internal/httpclient"
	"github.com/yuanquanya/netmc-launcher/internal/javainstall"
	"github.com/yuanquanya/netmc-launcher/internal/javaprobe"
	"github.com/yuanquanya/netmc-launcher/internal/launch"
	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
	"github.com/yuanquanya/netmc-launcher/internal/workspace"
)

// mirrorInsecureHosts lists the third-party mirror hosts §4.3/§4.4 allow to
// skip TLS verification; the canonical Mojang hosts are never included.
var mirrorInsecureHosts = []string{"bmclapi2.bangbang93.com", "mcbbs.net", "download.mcbbs.net"}

// Core wires every internal component into the operations §6 names.
type Core struct {
	layout    workspace.Layout
	http      *httpclient.Client
	catalogue *catalogue.Catalogue
	javaIndex *javaprobe.Index
	installer *javainstall.Installer
	pipeline  *launch.Pipeline
	bus       *eventbus.Bus
	log       hclog.Logger
}

// New builds an unwired Core; call Init(root) before using it.
func New(log hclog.Logger) *Core {
	if log == nil {
		log = hclog.New(&hclog.LoggerOptions{Name: "netmc-launcher", Level: hclog.Info})
	}
	return &Core{log: log, bus: eventbus.New()}
}

// Init implements init(root): it creates the workspace skeleton and wires
// every component against it (§6).
func (c *Core) Init(root string) error {
	c.layout = workspace.New(root)
	if err := c.layout.Init(); err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}

	c.http = httpclient.New(httpclient.Config{InsecureHosts: mirrorInsecureHosts}, c.log)
	c.catalogue = catalogue.New(root, c.http, c.log)
	c.javaIndex = javaprobe.NewIndex(root)

	dl := downloader.New(c.http, c.log)

	c.installer = javainstall.New(root, c.http, c.javaIndex, c.log)
	c.installer.OnPhaseChanged(func(phase javainstall.Phase, msg string) {
		c.bus.Publish(eventbus.JavaPhaseChanged, map[string]any{"phase": phase, "message": msg})
	})
	c.installer.OnProgress(func(pct int, msg string) {
		c.bus.Publish(eventbus.JavaProgress, map[string]any{"progress": pct, "message": msg})
	})
	c.installer.OnFinished(func(success bool, errMsg string) {
		c.bus.Publish(eventbus.JavaFinished, map[string]any{"success": success, "error": errMsg})
	})

	c.pipeline = launch.New(c.layout, c.catalogue, c.javaIndex, dl, c.log)
	c.pipeline.OnLog(func(line string) { c.bus.Publish(eventbus.LaunchLog, line) })
	c.pipeline.OnGameStarted(func() { c.bus.Publish(eventbus.GameStarted, nil) })
	c.pipeline.OnGameExited(func(code int) { c.bus.Publish(eventbus.GameExited, code) })
	c.pipeline.OnWindowReady(func() { c.bus.Publish(eventbus.GameWindowReady, nil) })

	c.javaIndex.RefreshAsync(func(entries []javaprobe.Entry) {
		c.bus.Publish(eventbus.JavaListReady, entries)
	})

	return nil
}

// ListVersions implements listVersions().
func (c *Core) ListVersions() ([]mcmanifest.VersionInfo, error) {
	return c.catalogue.GetVersions()
}

// RecommendedJava implements recommendedJava(id): the manifest's required
// major version, without requiring a compatible runtime to be installed.
func (c *Core) RecommendedJava(id string) (int, error) {
	versions, err := c.catalogue.GetVersions()
	if err != nil {
		return 0, err
	}
	url := ""
	for _, v := range versions {
		if v.ID == id {
			url = v.URL
			break
		}
	}
	manifest, err := c.catalogue.GetManifest(id, url)
	if err != nil {
		return 0, err
	}
	return manifest.RequiredJavaMajor(), nil
}

// Launch implements launch(id, username, memoryMB, customCmd?, priority?).
func (c *Core) Launch(id, username string, memoryMB int, customCmd string, priority launch.Priority) (launch.ExitCode, error) {
	url := ""
	if versions, err := c.catalogue.GetVersions(); err == nil {
		for _, v := range versions {
			if v.ID == id {
				url = v.URL
				break
			}
		}
	}

	return c.pipeline.Launch(launch.Request{
		VersionID:  id,
		VersionURL: url,
		Username:   username,
		MemoryMB:   memoryMB,
		CustomCmd:  customCmd,
		Priority:   priority,
	})
}

// JavaStatus implements javaStatus().
func (c *Core) JavaStatus() javainstall.Status {
	return c.installer.Status()
}

// InstallJava implements installJava(major).
func (c *Core) InstallJava(major int) {
	c.installer.InstallJava(major)
}

// RefreshJavaList implements refreshJavaList(): async, publishes
// javaListReady on completion.
func (c *Core) RefreshJavaList() {
	c.javaIndex.RefreshAsync(func(entries []javaprobe.Entry) {
		c.bus.Publish(eventbus.JavaListReady, entries)
	})
}

// RefreshJavaListSync implements refreshJavaListSync().
func (c *Core) RefreshJavaListSync() {
	c.javaIndex.RefreshSync()
}

// GetJavaList implements getJavaList().
func (c *Core) GetJavaList() []javaprobe.Entry {
	return c.javaIndex.Snapshot()
}

// Subscribe implements subscribe(event, handler).
func (c *Core) Subscribe(kind eventbus.Kind, handler eventbus.Handler) {
	c.bus.Subscribe(kind, handler)
}
