package rental

import (
	"github.com/google/uuid"
	"strings"
)

// CustomerHandle builds a username from the display name plus a short
// uniqueness token, e.g. "jane_doe_1f2e3d4c".
func CustomerHandle(fullName string) string {
	base := strings.ToLower(strings.Join(strings.Fields(fullName), "_"))
	if base == "" {
		base = "customer"
	}
	return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
