package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/llmctx/internal/model"
)

// MarkdownWriter outputs documents in Markdown format.
// The output is meant to be pasted at the top of an LLM conversation.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation. It handles table layout and GitHub-flavored alerts, so the
// writer only decides what goes where.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the document in Markdown format, followed by the raw
// JSON so the reader can copy either.
func (w *MarkdownWriter) Write(doc *model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Development Environment Context")
	md.PlainText("")
	md.PlainTextf("Last updated: %s", orDash(doc.Metadata.LastUpdated))
	md.PlainText("")

	w.writeEnvironment(md, &doc.UserEnvironment)
	w.writeDevOps(md, &doc.DevOpsPlan)

	if doc.NetworkInfo != nil {
		w.writeNetwork(md, doc.NetworkInfo.Details, doc.NetworkInfo.Ping)
	}
	if doc.SystemDetails != nil {
		w.writeSystemDetails(md, doc.SystemDetails)
	}

	data, err := MarshalDocument(doc)
	if err != nil {
		return 0, err
	}
	md.H2("data.json")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightJSON, strings.TrimSuffix(string(data), "\n"))
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSystemInfo outputs collected facts in Markdown format.
func (w *MarkdownWriter) WriteSystemInfo(info *model.SystemInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("System Report")
	md.PlainText("")
	if !info.CollectedAt.IsZero() {
		md.PlainTextf("Collected at: %s", info.CollectedAt.Format(model.TimestampLayout))
		md.PlainText("")
	}

	md.H2("Operating System")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"OS", cell(info.OS.Type)},
			{"Version", cell(info.OS.Version)},
			{"CPU Architecture", cell(info.OS.CPUArch)},
		},
	})
	md.PlainText("")

	md.H2("Hardware")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   hardwareRows(info.Hardware, info.GPU),
	})
	md.PlainText("")

	md.H2("Python")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Version", cell(info.Python.Version)},
			{"Executable", cell(info.Python.Executable)},
			{"Virtual Environment", yesNo(info.Python.IsVenv)},
		},
	})
	md.PlainText("")
	w.writePipFreeze(md, info.Python.PipFreeze)

	w.writeNetwork(md, info.NetworkDetails, info.Ping)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeEnvironment(md *markdown.Markdown, env *model.UserEnvironment) {
	ide := env.IDE
	if env.IDEVersion != nil {
		ide += " " + *env.IDEVersion
	}

	md.H2("Development Environment")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"OS", cell(env.OS)},
			{"OS Version", cell(env.OSVersion)},
			{"Python", cell(env.PythonVersion)},
			{"CPU Architecture", cell(env.Hardware.CPUArch)},
			{"IDE", cell(ide)},
			{"Shell", cell(env.Shell)},
		},
	})
	md.PlainText("")
	md.Note(env.LLMInstruction)
	md.PlainText("")
}

func (w *MarkdownWriter) writeDevOps(md *markdown.Markdown, plan *model.DevOpsPlan) {
	repo := "-"
	if plan.GitRepoURL != nil {
		repo = cell(*plan.GitRepoURL)
	}

	md.H2("DevOps and Infrastructure Plan")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Docker", yesNo(plan.UseDocker)},
			{"CI", ciText(plan)},
			{"Deployment Target", cell(plan.DeploymentTarget)},
			{"Git Repository", repo},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeNetwork(md *markdown.Markdown, details string, ping model.PingTest) {
	md.H2("Network")
	md.PlainText("")

	if ping.Status == model.PingStatusSuccess {
		md.Tip("Connectivity check succeeded.")
	} else {
		md.Warningf("Connectivity check %s.", orDash(ping.Status))
	}
	md.PlainText("")

	if strings.TrimSpace(details) != "" {
		md.CodeBlocks(markdown.SyntaxHighlightText, strings.TrimRight(details, "\r\n"))
		md.PlainText("")
	}
	if strings.TrimSpace(ping.Log) != "" {
		md.Details("Ping log", strings.TrimRight(ping.Log, "\r\n"))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSystemDetails(md *markdown.Markdown, d *model.SystemDetails) {
	md.H2("System Details")
	md.PlainText("")

	rows := hardwareRows(d.Hardware, d.GPU)
	rows = append(rows,
		[]string{"Python Executable", cell(d.PythonExecutable)},
		[]string{"Virtual Environment", yesNo(d.IsVenv)},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writePipFreeze(md, d.PipFreeze)
}

func (w *MarkdownWriter) writePipFreeze(md *markdown.Markdown, freeze string) {
	freeze = strings.TrimRight(freeze, "\r\n")
	if freeze == "" || freeze == model.NotAvailable {
		return
	}
	md.Details("pip freeze", freeze)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [llmctx](https://github.com/nao1215/llmctx)*")
}

// hardwareRows lists CPU, memory and GPU facts as table rows.
func hardwareRows(hw model.HardwareInfo, gpu model.GPUInfo) [][]string {
	rows := [][]string{
		{"CPU", cell(hw.CPUModel)},
		{"RAM", FormatRAM(hw)},
		{"GPU", cell(gpu.GPU)},
		{"CUDA Driver", cell(gpu.CUDADriverVersion)},
	}
	if gpu.CUDAToolkitVersion != "" {
		rows = append(rows, []string{"CUDA Toolkit", cell(gpu.CUDAToolkitVersion)})
	}
	return rows
}

// cell makes s safe for a single table cell.
func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
