package utils

import "strconv"

// StringToUint64 parse ID numerik dari path parameter.
// 0 kalau bukan angka — repo bakal balas not found, jadi tidak perlu error di sini.
func StringToUint64(str string) uint64 {
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0
	}
	return val
}
