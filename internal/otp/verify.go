package otp

// Compare counts the positions where both codes hold the same character.
func Compare(generated, received Code) int {
	matches := 0
	for i := 0; i < Length; i++ {
		if generated[i] == received[i] {
			matches++
		}
	}
	return matches
}

// Verify reports whether every position matches. There is no partial credit.
func Verify(generated, received Code) bool {
	return Compare(generated, received) == Length
}

// ParseCode copies up to Length bytes of s into a Code. Missing positions are
// left as zero bytes, which never match a digit.
func ParseCode(s string) Code {
	var c Code
	copy(c[:], s)
	return c
}
