package pkg

import "math"

// UnreachablePolicy decides what greedy construction does when the nearest unvisited
// collection point is unreachable (infinite shortest-path distance).
type UnreachablePolicy uint8

const (
	// UNREACHABLE_ALLOW appends the lowest-index unreachable node and keeps going.
	UNREACHABLE_ALLOW UnreachablePolicy = iota
	// UNREACHABLE_FAIL stops construction with util.ErrUnreachable.
	UNREACHABLE_FAIL
)

func GetUnreachablePolicy(policy string) UnreachablePolicy {
	switch policy {
	case "fail":
		return UNREACHABLE_FAIL
	default:
		return UNREACHABLE_ALLOW
	}
}

func (p UnreachablePolicy) String() string {
	switch p {
	case UNREACHABLE_FAIL:
		return "fail"
	default:
		return "allow"
	}
}

// INF_WEIGHT marks an unreachable origin/destination pair in a cost matrix.
var INF_WEIGHT = math.Inf(1)

const (
	DEFAULT_MAX_NODES = 500

	// osrm
	DEFAULT_OSRM_BASE_URL          = "https://router.project-osrm.org"
	DEFAULT_OSRM_PROFILE           = "driving"
	DEFAULT_OSRM_ANNOTATION        = "distance"
	DEFAULT_OSRM_MATRIX_CACHE_SIZE = 1 << 10
)
