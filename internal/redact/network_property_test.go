package redact

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genIPv4 generates dotted IPv4 addresses.
func genIPv4() gopter.Gen {
	return gen.SliceOfN(4, gen.IntRange(0, 255)).Map(func(octets []int) string {
		return fmt.Sprintf("%d.%d.%d.%d", octets[0], octets[1], octets[2], octets[3])
	})
}

// genLabel picks one of the sensitive ipconfig labels.
func genLabel() gopter.Gen {
	labels := make([]interface{}, len(sensitiveLabels))
	for i, l := range sensitiveLabels {
		labels[i] = l
	}
	return gen.OneConstOf(labels...)
}

func TestMaskNetworkDetailsProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("labelled values never survive masking", prop.ForAll(
		func(label, addr string) bool {
			line := "   " + label + " . . . . . : " + addr
			got := MaskNetworkDetails(line)
			return !strings.Contains(got, addr) && strings.HasSuffix(got, ": "+Mask)
		},
		genLabel(),
		genIPv4(),
	))

	properties.Property("inet addresses never survive masking", prop.ForAll(
		func(addr string, prefix int) bool {
			line := fmt.Sprintf("    inet %s/%d scope global eth0", addr, prefix)
			return !strings.Contains(MaskNetworkDetails(line), addr)
		},
		genIPv4(),
		gen.IntRange(0, 32),
	))

	properties.Property("masking preserves the number of lines", prop.ForAll(
		func(lines []string) bool {
			in := strings.Join(lines, "\n")
			return strings.Count(MaskNetworkDetails(in), "\n") == strings.Count(in, "\n")
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("masking is idempotent", prop.ForAll(
		func(label, addr string) bool {
			in := label + ": " + addr + "\n    inet " + addr + "/24 brd " + addr
			once := MaskNetworkDetails(in)
			return MaskNetworkDetails(once) == once
		},
		genLabel(),
		genIPv4(),
	))

	properties.TestingRun(t)
}
