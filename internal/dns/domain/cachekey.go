package domain

import (
	"fmt"

	"github.com/rrwalk/rrwalk/internal/dns/common/utils"
)

// GenerateCacheKey builds the answer cache key for a query tuple:
// lowercase(qname):qtype:qclass, using the numeric type/class codes so the
// key format never depends on the RRType/RRClass String() tables.
func GenerateCacheKey(name string, t RRType, c RRClass) string {
	return fmt.Sprintf("%s:%d:%d", utils.CanonicalDNSName(name), uint16(t), uint16(c))
}
