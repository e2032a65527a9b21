package codec

import "github.com/google/uuid"

// ParseUUID accepts the canonical hyphenated form plus the common variants
// uuid.Parse understands (braced, URN-prefixed, bare hex).
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// UUIDFromBytes converts a raw 16-byte value.
func UUIDFromBytes(b []byte) (uuid.UUID, error) {
	return uuid.FromBytes(b)
}

// FormatUUID renders the canonical lowercase hyphenated form.
func FormatUUID(u uuid.UUID) string {
	return u.String()
}
