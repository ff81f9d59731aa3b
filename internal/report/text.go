package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/llmctx/internal/model"
)

// ruleWidth is the width of section separators.
const ruleWidth = 70

// TextWriter outputs human-readable text for terminal display.
//
// Design decision: We use plain text with ASCII separators rather than
// ANSI colors so the output can be piped to files or other tools.
type TextWriter struct {
	baseWriter

	// verbose adds the network listing and pip freeze output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose includes long command output in the report.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the document in human-readable format.
func (w *TextWriter) Write(doc *model.Document) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "LLM CONTEXT")
	fmt.Fprintf(&sb, "Last Updated:   %s\n\n", orDash(doc.Metadata.LastUpdated))

	env := doc.UserEnvironment
	ide := env.IDE
	if env.IDEVersion != nil {
		ide += " " + *env.IDEVersion
	}
	w.writeSection(&sb, "DEVELOPMENT ENVIRONMENT")
	w.writeField(&sb, "OS", env.OS+" "+env.OSVersion)
	w.writeField(&sb, "Python", env.PythonVersion)
	w.writeField(&sb, "CPU Arch", env.Hardware.CPUArch)
	w.writeField(&sb, "IDE", ide)
	w.writeField(&sb, "Shell", env.Shell)
	fmt.Fprintf(&sb, "\n  %s\n\n", env.LLMInstruction)

	plan := doc.DevOpsPlan
	repo := "-"
	if plan.GitRepoURL != nil {
		repo = *plan.GitRepoURL
	}
	w.writeSection(&sb, "DEVOPS AND INFRASTRUCTURE PLAN")
	w.writeField(&sb, "Docker", yesNo(plan.UseDocker))
	w.writeField(&sb, "CI", ciText(&plan))
	w.writeField(&sb, "Deployment", plan.DeploymentTarget)
	w.writeField(&sb, "Git Repository", repo)
	sb.WriteString("\n")

	if doc.NetworkInfo != nil {
		w.writeNetwork(&sb, doc.NetworkInfo.Details, doc.NetworkInfo.Ping)
	}
	if d := doc.SystemDetails; d != nil {
		w.writeSection(&sb, "SYSTEM DETAILS")
		w.writeHardware(&sb, d.Hardware, d.GPU)
		w.writeField(&sb, "Python Executable", d.PythonExecutable)
		w.writeField(&sb, "Virtual Env", yesNo(d.IsVenv))
		sb.WriteString("\n")
		w.writeLong(&sb, "pip freeze", d.PipFreeze)
	}

	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteSystemInfo outputs collected facts in human-readable format.
func (w *TextWriter) WriteSystemInfo(info *model.SystemInfo) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "SYSTEM REPORT")
	if !info.CollectedAt.IsZero() {
		fmt.Fprintf(&sb, "Collected At:   %s\n\n", info.CollectedAt.Format(model.TimestampLayout))
	}

	w.writeSection(&sb, "OPERATING SYSTEM")
	w.writeField(&sb, "OS", info.OS.Type)
	w.writeField(&sb, "Version", info.OS.Version)
	w.writeField(&sb, "CPU Arch", info.OS.CPUArch)
	sb.WriteString("\n")

	w.writeSection(&sb, "HARDWARE")
	w.writeHardware(&sb, info.Hardware, info.GPU)
	sb.WriteString("\n")

	w.writeSection(&sb, "PYTHON")
	w.writeField(&sb, "Version", info.Python.Version)
	w.writeField(&sb, "Executable", info.Python.Executable)
	w.writeField(&sb, "Virtual Env", yesNo(info.Python.IsVenv))
	sb.WriteString("\n")
	w.writeLong(&sb, "pip freeze", info.Python.PipFreeze)

	w.writeNetwork(&sb, info.NetworkDetails, info.Ping)
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeHardware(sb *strings.Builder, hw model.HardwareInfo, gpu model.GPUInfo) {
	w.writeField(sb, "CPU", hw.CPUModel)
	w.writeField(sb, "RAM", FormatRAM(hw))
	w.writeField(sb, "GPU", gpu.GPU)
	w.writeField(sb, "CUDA Driver", gpu.CUDADriverVersion)
	if gpu.CUDAToolkitVersion != "" {
		w.writeField(sb, "CUDA Toolkit", gpu.CUDAToolkitVersion)
	}
}

func (w *TextWriter) writeNetwork(sb *strings.Builder, details string, ping model.PingTest) {
	w.writeSection(sb, "NETWORK")
	w.writeField(sb, "Ping", ping.Status)
	sb.WriteString("\n")
	w.writeLong(sb, "details", details)
	w.writeLong(sb, "ping log", ping.Log)
}

// writeLong writes multi-line command output, only in verbose mode.
func (w *TextWriter) writeLong(sb *strings.Builder, title, body string) {
	body = strings.TrimRight(body, "\r\n")
	if !w.verbose || body == "" {
		return
	}
	fmt.Fprintf(sb, "  [%s]\n", title)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(sb, "    %s\n", strings.TrimRight(line, "\r"))
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeField(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "  %-18s %s\n", label+":", orDash(strings.TrimSpace(value)))
}

func (w *TextWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := (ruleWidth - len(title)) / 2
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *TextWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Generated by llmctx\n")
}
