package codec

import "encoding/base64"

// EncodeBase64 renders raw bytes in standard base64, the fallback textual
// form for byte sequences that are not valid UTF-8.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
