package experiment

import (
	"bundleBoost/domain"

	"github.com/cespare/xxhash/v2"
)

// AssignVariant buckets a session into an arm of a test. The result depends
// only on the two ids, so a session keeps its arm for the life of the test
// without any stored assignment.
func AssignVariant(testID, sessionID string) domain.Arm {
	if xxhash.Sum64String(testID+sessionID)%2 == 0 {
		return domain.ArmControl
	}
	return domain.ArmVariant
}
