package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/llmctx/internal/model"
	"github.com/nao1215/llmctx/internal/store"
	"github.com/nao1215/llmctx/internal/workspace"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testInfo() *model.SystemInfo {
	info := model.NewSystemInfo()
	info.OS = model.OSInfo{Type: "Linux", Version: "6.8.0-31-generic", CPUArch: "x86_64"}
	info.Hardware = model.HardwareInfo{CPUModel: "Intel(R) Core(TM) i7-12700K", RAMTotalGB: model.Float64(31.25)}
	info.Python = model.PythonDetails{Version: "3.11.9", Executable: "/usr/bin/python3", PipFreeze: "numpy==1.26.4\n"}
	info.NetworkDetails = "    inet 10.0.0.5/24 brd 10.0.0.255 scope global eth0"
	info.Ping = model.PingTest{Status: model.PingStatusSuccess, Log: "ok"}
	return info
}

func fakeCollect(context.Context) (*model.SystemInfo, error) {
	return testInfo(), nil
}

// newTestWorkspace returns a workspace in a temporary directory with a
// history database and facts that never touch the real machine.
func newTestWorkspace(t *testing.T) (*workspace.Workspace, *store.HistoryDB) {
	t.Helper()

	db, err := store.Open(t.TempDir(), store.DefaultOptions())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ws := workspace.New(filepath.Join(t.TempDir(), "data", "data.json"), fakeCollect,
		workspace.WithGOOS("linux"),
		workspace.WithClock(func() time.Time { return testNow }),
		workspace.WithLogger(testLogger()),
		workspace.WithHistory(db),
	)
	return ws, db
}

func testPreferences() *model.Preferences {
	return &model.Preferences{
		IDE:              "VSCode",
		Shell:            "bash",
		CIProvider:       model.NoneOption,
		DeploymentTarget: model.NoneOption,
		GitAccount:       "HisameOgasahara",
		MaskNetwork:      true,
	}
}
