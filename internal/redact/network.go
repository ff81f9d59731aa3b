package redact

import (
	"regexp"
	"strings"
)

// Mask replaces a sensitive value.
const Mask = "**[MASKED]**"

// sensitiveLabels are ipconfig labels whose values identify the machine or network.
var sensitiveLabels = []string{
	"Physical Address", "물리적 주소",
	"IPv6 Address", "IPv6 주소",
	"IPv4 Address", "IPv4 주소",
	"Default Gateway", "기본 게이트웨이",
	"DHCP Server", "DHCP 서버",
	"DHCPv6 IAID",
	"DHCPv6 Client DUID", "DHCPv6 클라이언트 DUID",
	"DNS Servers", "DNS 서버",
}

// addressLinePrefixes start ip addr lines that carry addresses.
var addressLinePrefixes = []string{"inet ", "inet6 ", "link/"}

var (
	ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`)
	macPattern  = regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`)
	// ipv6Pattern requires at least two colons so that MACs with dashes and
	// "scope:link" style words are not matched.
	ipv6Pattern = regexp.MustCompile(`(?:[0-9A-Fa-f]{0,4}:){2,7}[0-9A-Fa-f]{0,4}(?:%\w+)?(?:/\d{1,3})?`)
)

var tokenPattern = regexp.MustCompile(`\S+`)

// MaskNetworkDetails masks sensitive values in interface listings.
//
// A line containing one of the ipconfig labels is cut at its first colon
// and the value replaced with Mask; a labelled line without a colon is
// kept as is. Lines holding only an address right after a masked label
// are masked too. Lines of ip addr output that start with inet, inet6 or
// link/ have every address token replaced. All other lines are unchanged,
// and line breaks are preserved.
func MaskNetworkDetails(text string) string {
	lines := strings.Split(text, "\n")
	continuation := false
	for i, line := range lines {
		switch {
		case hasSensitiveLabel(line):
			left, _, ok := strings.Cut(line, ":")
			if ok {
				lines[i] = left + ": " + Mask
			}
			continuation = ok
		case continuation && isBareAddress(line):
			// ipconfig prints extra DNS servers and gateways on their own lines.
			lines[i] = leadingSpace(line) + Mask
		case isAddressLine(line):
			lines[i] = maskAddresses(line)
			continuation = false
		default:
			continuation = false
		}
	}
	return strings.Join(lines, "\n")
}

// IsSensitiveValue reports whether s is, or starts with, a network address.
func IsSensitiveValue(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, p := range []*regexp.Regexp{ipv4Pattern, macPattern} {
		if loc := p.FindStringIndex(s); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

func hasSensitiveLabel(line string) bool {
	for _, label := range sensitiveLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}

func isAddressLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range addressLinePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// maskAddresses replaces address tokens in a single ip addr line in place,
// keeping the whitespace between tokens. The leading keyword is never masked.
// MACs go first since a MAC with colons also looks like an IPv6 address.
func maskAddresses(line string) string {
	spans := tokenPattern.FindAllStringIndex(line, -1)
	if len(spans) < 2 {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	last := 0
	for i, span := range spans {
		token := line[span[0]:span[1]]
		b.WriteString(line[last:span[0]])
		if i > 0 && (macPattern.MatchString(token) || ipv4Pattern.MatchString(token) || isIPv6Token(token)) {
			b.WriteString(Mask)
		} else {
			b.WriteString(token)
		}
		last = span[1]
	}
	b.WriteString(line[last:])
	return b.String()
}

func isIPv6Token(f string) bool {
	m := ipv6Pattern.FindString(f)
	return m != "" && len(m) == len(f) && strings.Count(m, ":") >= 2
}

// isBareAddress reports whether the line is nothing but one address.
func isBareAddress(line string) bool {
	f := strings.TrimSpace(line)
	f = strings.TrimSuffix(f, "(Preferred)")
	if f == "" || strings.ContainsAny(f, " \t") {
		return false
	}
	if m := ipv4Pattern.FindString(f); m == f {
		return true
	}
	return isIPv6Token(f)
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
