package builtin

import (
	"regexp"
	"strings"

	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/util"
)

// prompt characters a CLI may print before an echoed command
const promptChars = ">#$])"

// RemoveCommand drops lines that echo the command sent to the device,
// whether bare or behind a prompt such as "<edge1>" or "router#".
type RemoveCommand struct{}

func (RemoveCommand) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: "remove_command", Accepts: plugin.KindRaw}
}

func (r RemoveCommand) Process(out plugin.Output, q plugin.Query) plugin.Output {
	if !r.Descriptor().Applies(out, q) {
		return out
	}
	raw := out.(plugin.Raw)
	cmd := strings.TrimSpace(q.Command)
	if cmd == "" {
		return raw
	}

	lines := strings.Split(raw.Stdout, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !echoesCommand(strings.TrimRight(line, "\r"), cmd) {
			kept = append(kept, line)
		}
	}
	raw.Stdout = strings.Join(kept, "\n")
	return raw
}

func echoesCommand(line, cmd string) bool {
	line = strings.TrimSpace(line)
	if line == cmd {
		return true
	}
	prefix, ok := strings.CutSuffix(line, cmd)
	if !ok {
		return false
	}
	prefix = strings.TrimRight(prefix, " ")
	return prefix != "" && strings.ContainsAny(prefix[len(prefix)-1:], promptChars)
}

var pagerPrompt = regexp.MustCompile(`^-- \[Q quit\|.*\]\s*$`)

// MikrotikGarbageOutput cleans RouterOS/SwitchOS terminal noise: ANSI
// escapes, carriage-return overwrites, pager prompts and the repeated
// progress lines printed while a command is still running.
type MikrotikGarbageOutput struct{}

// MikroTik platform ids, as used by netmiko and the inventory.
const (
	MikrotikRouterOS = "mikrotik_routeros"
	MikrotikSwitchOS = "mikrotik_switchos"
)

func (MikrotikGarbageOutput) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:      "mikrotik_garbage_output",
		Platforms: []string{MikrotikRouterOS, MikrotikSwitchOS},
		Accepts:   plugin.KindRaw,
	}
}

func (m MikrotikGarbageOutput) Process(out plugin.Output, q plugin.Query) plugin.Output {
	if !m.Descriptor().Applies(out, q) {
		return out
	}
	raw := out.(plugin.Raw)
	raw.Stdout = cleanTerminal(raw.Stdout)
	return raw
}

func cleanTerminal(s string) string {
	s = util.StripANSI(s)

	var (
		kept     []string
		last     string
		hadBlank bool
	)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		// a carriage return rewinds the cursor; only the final write shows
		if i := strings.LastIndex(line, "\r"); i >= 0 {
			line = line[i+1:]
		}
		line = strings.TrimRight(line, " \t")

		if pagerPrompt.MatchString(line) {
			continue
		}
		if line == "" {
			hadBlank = len(kept) > 0
			continue
		}
		if line == last && !hadBlank {
			continue
		}
		if hadBlank {
			kept = append(kept, "")
			hadBlank = false
		}
		kept = append(kept, line)
		last = line
	}
	return strings.Join(kept, "\n")
}
