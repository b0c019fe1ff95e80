package strings

// maskedSuffixLen is how many trailing characters MaskSecret keeps visible.
const maskedSuffixLen = 4

// MaskSecret obscures a credential for display, keeping only the last few
// characters so a user can still tell keys apart. Secrets too short to
// mask safely are replaced entirely. Empty input stays empty so callers
// can distinguish "no secret" from "hidden secret".
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) < 2*maskedSuffixLen {
		return "****"
	}
	return "****" + string(runes[len(runes)-maskedSuffixLen:])
}
