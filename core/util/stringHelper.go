package util

// util/StringHelper.java

// Returns the length of the longest common byte prefix of s1 and s2.
func StringDifference(s1, s2 string) int {
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}
	for i := 0; i < n; i++ {
		if s1[i] != s2[i] {
			return i
		}
	}
	return n
}
