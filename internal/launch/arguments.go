package launch

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yuanquanya/netmc-launcher/internal/mcmanifest"
	"github.com/yuanquanya/netmc-launcher/internal/rules"
)

const (
	launcherName    = "netmc-launcher"
	launcherVersion = "1.0.0"
)

// placeholders builds the §4.10 step 4 substitution table for ctx.
func (p *Pipeline) placeholders(ctx *Context) map[string]string {
	m := ctx.Manifest
	return map[string]string{
		"auth_player_name":  ctx.Request.Username,
		"auth_uuid":         "00000000-0000-0000-0000-000000000000",
		"auth_access_token": "0",
		"user_type":         "mojang",
		"version_name":      m.ID,
		"version_type":      m.Type,
		"game_directory":    p.layout.Root,
		"assets_root":       p.layout.Root + "/assets",
		"game_assets":       p.layout.Root + "/assets",
		"assets_index_name": assetID(m),
		"natives_directory": ctx.NativesDir,
		"launcher_name":     launcherName,
		"launcher_version":  launcherVersion,
		"classpath":         ctx.ClassPath,
	}
}

func substitute(arg string, placeholders map[string]string) string {
	for k, v := range placeholders {
		arg = strings.ReplaceAll(arg, "${"+k+"}", v)
	}
	return arg
}

// step 4: ConstructArguments
func (p *Pipeline) constructArguments(ctx *Context) {
	placeholders := p.placeholders(ctx)

	if ctx.Manifest.Arguments != nil {
		ctx.JVMArgs = expandArgumentList(ctx.Manifest.Arguments.JVM, placeholders)
	} else {
		ctx.JVMArgs = []string{
			"-Djava.library.path=" + ctx.NativesDir,
			"-Dminecraft.launcher.brand=" + launcherName,
			"-Dminecraft.launcher.version=" + launcherVersion,
			"-cp", ctx.ClassPath,
		}
	}

	xmn := clamp(ctx.Request.MemoryMB/8, 64, 512)
	ctx.JVMArgs = append(ctx.JVMArgs,
		"-Xmx"+strconv.Itoa(ctx.Request.MemoryMB)+"M",
		"-Xmn"+strconv.Itoa(xmn)+"M",
		"-Dlog4j2.formatMsgNoLookups=true",
		"-Dfile.encoding=UTF-8",
		"-XX:+UseG1GC",
		"-XX:-UseAdaptiveSizePolicy",
		"-XX:-OmitStackTraceInFastThrow",
	)

	ctx.JVMArgs = append(ctx.JVMArgs, ctx.Manifest.MainClass)

	if ctx.Manifest.Arguments != nil {
		ctx.GameArgs = expandArgumentList(ctx.Manifest.Arguments.Game, placeholders)
	} else {
		ctx.GameArgs = expandLegacyArguments(ctx.Manifest.MinecraftArguments, placeholders)
	}

	ctx.GameArgs = dedupeTweakClass(ctx.GameArgs, p.logf)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func expandArgumentList(raw []any, placeholders map[string]string) []string {
	var out []string
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			out = append(out, substitute(v, placeholders))
		case map[string]any:
			ruleList := decodeRules(v["rules"])
			if !rules.Allows(ruleList) {
				continue
			}
			switch val := v["value"].(type) {
			case string:
				out = append(out, substitute(val, placeholders))
			case []any:
				for _, s := range val {
					if str, ok := s.(string); ok {
						out = append(out, substitute(str, placeholders))
					}
				}
			}
		}
	}
	return out
}

func decodeRules(raw any) []mcmanifest.Rule {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var ruleList []mcmanifest.Rule
	if err := json.Unmarshal(data, &ruleList); err != nil {
		return nil
	}
	return ruleList
}

func expandLegacyArguments(minecraftArguments string, placeholders map[string]string) []string {
	var out []string
	for _, tok := range strings.Fields(minecraftArguments) {
		out = append(out, substitute(tok, placeholders))
	}
	return out
}

// dedupeTweakClass removes every --tweakClass pair whose value mentions
// OptiFine when the assembled args also contain an FMLTweaker pair,
// preserving the Forge tweak (§4.10 step 4).
func dedupeTweakClass(args []string, logf func(string, ...any)) []string {
	hasFML := false
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--tweakClass" && strings.Contains(args[i+1], "FMLTweaker") {
			hasFML = true
			break
		}
	}
	if !hasFML {
		return args
	}

	var out []string
	removed := false
	for i := 0; i < len(args); i++ {
		if args[i] == "--tweakClass" && i+1 < len(args) && strings.Contains(args[i+1], "OptiFine") {
			removed = true
			i++
			continue
		}
		out = append(out, args[i])
	}
	if removed && logf != nil {
		logf("removed OptiFine tweakClass in favour of FMLTweaker")
	}
	return out
}
