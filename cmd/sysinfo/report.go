package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

const (
	gaugeFill  = "█"
	gaugeEmpty = "░"
	gaugeWidth = 20
)

// styles holds the report styles.
type styles struct {
	title  lipgloss.Style
	subtle lipgloss.Style
	label  lipgloss.Style
	card   lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:  plain,
			subtle: plain,
			label:  plain,
			card:   plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			warn:   plain,
		}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45")),
		subtle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}
}

func (st styles) box(title, body string) string {
	return st.card.Render(st.label.Render(title) + "\n" + body)
}

// renderReport renders the state of sys.
func renderReport(sys *sysinfo.System, out config.OutputConfig, st styles, now time.Time) string {
	header := st.title.Render("sysinfo ("+sys.Backend()+")") + "  " +
		st.subtle.Render(now.Format("Mon Jan 2 15:04:05 MST 2006")) + "  " +
		st.subtle.Render("up "+formatUptime(sys.Uptime()))

	load := sys.LoadAverage()
	cpuLines := []string{fmt.Sprintf("%-6s %s  load %.2f %.2f %.2f",
		"total", gaugeBar(sys.GlobalProcessor().CPUUsage, gaugeWidth), load.One, load.Five, load.Fifteen)}
	for _, p := range sys.Processors()[1:] {
		cpuLines = append(cpuLines, fmt.Sprintf("%-6s %s %5d MHz", p.Name, gaugeBar(p.CPUUsage, gaugeWidth), p.FrequencyMHz))
	}
	if brand := sys.GlobalProcessor().Brand; brand != "" {
		cpuLines = append(cpuLines, st.subtle.Render(brand))
	}

	memBody := fmt.Sprintf("RAM  %s  %s / %s\nSwap %s  %s / %s",
		gaugeBar(percent(sys.UsedMemory(), sys.TotalMemory()), gaugeWidth),
		formatKB(sys.UsedMemory()), formatKB(sys.TotalMemory()),
		gaugeBar(percent(sys.UsedSwap(), sys.TotalSwap()), gaugeWidth),
		formatKB(sys.UsedSwap()), formatKB(sys.TotalSwap()))

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		st.box("CPU", strings.Join(cpuLines, "\n")),
		st.box("Memory", memBody))
	sections := []string{header, top}

	if out.Processes > 0 {
		sections = append(sections, st.box("Processes", renderProcesses(sys.Processes(), out.Sort, out.Processes)))
	}

	var side []string
	if nets := sys.Networks(); len(nets) > 0 {
		rows := make([]string, 0, len(nets))
		for _, n := range nets {
			rows = append(rows, fmt.Sprintf("%-12s rx %10s/s  tx %10s/s  total %s / %s",
				truncate(n.Name, 12), formatBytes(uint64(n.ReceiveRate)), formatBytes(uint64(n.TransmitRate)),
				formatBytes(n.TotalReceived), formatBytes(n.TotalTransmitted)))
		}
		side = append(side, st.box("Networks", strings.Join(rows, "\n")))
	}
	if comps := sys.Components(); len(comps) > 0 {
		rows := make([]string, 0, len(comps))
		for _, c := range comps {
			row := fmt.Sprintf("%-28s %5.1f°C  max %5.1f°C", truncate(c.Label, 28), c.Temperature, c.Max)
			if c.HasCritical {
				row += fmt.Sprintf("  crit %5.1f°C", c.Critical)
			}
			rows = append(rows, row)
		}
		side = append(side, st.box("Components", strings.Join(rows, "\n")))
	}
	if len(side) > 0 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, side...))
	}

	var bottom []string
	if disks := sys.Disks(); len(disks) > 0 {
		rows := make([]string, 0, len(disks))
		for _, d := range disks {
			rows = append(rows, fmt.Sprintf("%-20s %-6s %s  %s free of %s",
				truncate(d.MountPoint, 20), d.FileSystem,
				gaugeBar(percent(d.Total-min(d.Available, d.Total), d.Total), 10),
				formatBytes(d.Available), formatBytes(d.Total)))
		}
		bottom = append(bottom, st.box("Disks", strings.Join(rows, "\n")))
	}
	if users := sys.Users(); len(users) > 0 {
		rows := make([]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, fmt.Sprintf("%-16s %6d  %s", truncate(u.Name, 16), u.UID, strings.Join(u.Groups, ",")))
		}
		bottom = append(bottom, st.box("Users", strings.Join(rows, "\n")))
	}
	if len(bottom) > 0 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, bottom...))
	}

	if errs := sys.LastErrors(); len(errs) > 0 {
		rows := make([]string, 0, len(errs))
		for _, e := range errs {
			rows = append(rows, st.warn.Render(e.Error()))
		}
		sections = append(sections, strings.Join(rows, "\n"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderProcesses renders the first limit processes in the given order.
func renderProcesses(procs []sysinfo.Process, order string, limit int) string {
	sortProcesses(procs, order)
	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-20s %-9s %6s %10s", "pid", "name", "status", "cpu%", "mem")
	for i := 0; i < len(procs) && i < limit; i++ {
		p := procs[i]
		fmt.Fprintf(&b, "\n%-7d %-20s %-9s %6.1f %10s",
			p.Pid, truncate(p.Name, 20), p.Status, p.CPUUsage, formatKB(p.Memory))
	}
	return b.String()
}

func sortProcesses(procs []sysinfo.Process, order string) {
	var less func(a, b sysinfo.Process) bool
	switch order {
	case config.SortMemory:
		less = func(a, b sysinfo.Process) bool { return a.Memory > b.Memory }
	case config.SortName:
		less = func(a, b sysinfo.Process) bool { return a.Name < b.Name }
	case config.SortPid:
		less = func(a, b sysinfo.Process) bool { return a.Pid < b.Pid }
	default:
		less = func(a, b sysinfo.Process) bool { return a.CPUUsage > b.CPUUsage }
	}
	sort.SliceStable(procs, func(i, j int) bool { return less(procs[i], procs[j]) })
}

// renderProcess renders every field of one process.
func renderProcess(p sysinfo.Process, st styles) string {
	parent := "-"
	if p.HasParent {
		parent = fmt.Sprint(p.Parent)
	}
	rows := [][2]string{
		{"pid", fmt.Sprint(p.Pid)},
		{"parent", parent},
		{"name", p.Name},
		{"exe", p.Exe},
		{"cmd", strings.Join(p.Cmd, " ")},
		{"cwd", p.Cwd},
		{"root", p.Root},
		{"status", p.Status.String()},
		{"memory", formatKB(p.Memory)},
		{"virtual", formatKB(p.VirtualMemory)},
		{"started", formatStart(p.StartTime)},
		{"cpu time", p.CPUTime.Round(time.Millisecond).String()},
		{"cpu", fmt.Sprintf("%.1f%%", p.CPUUsage)},
		{"environ", fmt.Sprintf("%d variables", len(p.Environ))},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, st.label.Render(fmt.Sprintf("%-9s", r[0]))+" "+r[1])
	}
	return st.box(fmt.Sprintf("Process %d", p.Pid), strings.Join(lines, "\n"))
}

func gaugeBar(pct float32, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float32(width))
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func percent(used, total uint64) float32 {
	if total == 0 {
		return 0
	}
	return float32(float64(used) * 100 / float64(total))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatKB(kb uint64) string {
	return formatBytes(kb * 1024)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTP"[exp])
}

func formatUptime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, d.Truncate(time.Minute))
	}
	return d.String()
}

func formatStart(epoch uint64) string {
	if epoch == 0 {
		return "-"
	}
	return time.Unix(int64(epoch), 0).Format(time.DateTime)
}
