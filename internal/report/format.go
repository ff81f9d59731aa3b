package report

import (
	"fmt"

	"github.com/nao1215/llmctx/internal/model"
)

// FormatRAM renders memory facts, e.g. "15.56 GB".
func FormatRAM(hw model.HardwareInfo) string {
	if hw.RAMTotalGB != nil {
		return fmt.Sprintf("%.2f GB", *hw.RAMTotalGB)
	}
	if hw.RAMError != "" {
		return hw.RAMError
	}
	return model.NotAvailable
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ciText(plan *model.DevOpsPlan) string {
	if !plan.UseCI {
		return "not used"
	}
	return plan.CIProvider
}
