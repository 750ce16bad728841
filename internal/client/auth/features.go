package auth

// UnlimitedQuota marks a tier with no daily generation cap.
const UnlimitedQuota = -1

// FeatureSet is what a (tier, connectivity) pair unlocks. Screens consume it
// directly; it carries no identity of its own.
type FeatureSet struct {
	CanGenerate          bool
	CanPersist           bool
	CanSyncAcrossDevices bool
	HasUnlimitedAccess   bool
	DailyQuota           int
}

type capabilityRow struct {
	offline FeatureSet
	online  FeatureSet
}

// capabilityTable maps every (tier, connected) pair to its feature set.
// Guests never persist; only authenticated users sync across devices, and
// generation always needs the backend.
var capabilityTable = map[Tier]capabilityRow{
	TierGuest: {
		offline: FeatureSet{},
		online:  FeatureSet{CanGenerate: true, DailyQuota: 3},
	},
	TierQuickStart: {
		offline: FeatureSet{CanPersist: true},
		online:  FeatureSet{CanGenerate: true, CanPersist: true, DailyQuota: 5},
	},
	TierAuthenticated: {
		offline: FeatureSet{CanPersist: true, HasUnlimitedAccess: true, DailyQuota: UnlimitedQuota},
		online: FeatureSet{
			CanGenerate:          true,
			CanPersist:           true,
			CanSyncAcrossDevices: true,
			HasUnlimitedAccess:   true,
			DailyQuota:           UnlimitedQuota,
		},
	},
}

// Capabilities is a pure function: the same inputs always yield the same
// output. TierNone unlocks nothing.
func Capabilities(tier Tier, connected bool) FeatureSet {
	row, ok := capabilityTable[tier]
	if !ok {
		return FeatureSet{}
	}
	if connected {
		return row.online
	}
	return row.offline
}
