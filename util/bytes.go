package util

func CopyBytes(b []byte) []byte {
	n := make([]byte, len(b))
	copy(n, b)

	return n
}

func ConcatBytesSlice(sl ...[]byte) []byte {
	var t int
	for i := range sl {
		t += len(sl[i])
	}

	n := make([]byte, t)

	var j int
	for i := range sl {
		j += copy(n[j:], sl[i])
	}

	return n
}
