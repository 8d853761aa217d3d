package permissions

// FriendPermissions describes what the subject of a friendship edge shares
// with its target. The zero value shares nothing.
type FriendPermissions struct {
	SeeLocation    bool `json:"seeLocation" gorm:"column:see_location;not null;default:false"`
	SeeActivity    bool `json:"seeActivity" gorm:"column:see_activity;not null;default:false"`
	SeeFullProfile bool `json:"seeFullProfile" gorm:"column:see_full_profile;not null;default:false"`
}

// Default returns the default-closed permission set given to every new edge.
func Default() FriendPermissions {
	return FriendPermissions{}
}

// Capability names one piece of subject-owned information.
type Capability string

const (
	CapabilityLocation    Capability = "location"
	CapabilityActivity    Capability = "activity"
	CapabilityFullProfile Capability = "full_profile"
)

// CanSee reports whether p grants the capability. Unknown capabilities are never granted.
func CanSee(p FriendPermissions, capability Capability) bool {
	switch capability {
	case CapabilityLocation:
		return p.SeeLocation
	case CapabilityActivity:
		return p.SeeActivity
	case CapabilityFullProfile:
		return p.SeeFullProfile
	default:
		return false
	}
}

// Patch is a partial update. Nil fields are left untouched by Merge.
type Patch struct {
	SeeLocation    *bool `json:"seeLocation,omitempty"`
	SeeActivity    *bool `json:"seeActivity,omitempty"`
	SeeFullProfile *bool `json:"seeFullProfile,omitempty"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p Patch) IsEmpty() bool {
	return p.SeeLocation == nil && p.SeeActivity == nil && p.SeeFullProfile == nil
}

// Merge applies the fields present in patch on top of existing.
func Merge(existing FriendPermissions, patch Patch) FriendPermissions {
	merged := existing
	if patch.SeeLocation != nil {
		merged.SeeLocation = *patch.SeeLocation
	}
	if patch.SeeActivity != nil {
		merged.SeeActivity = *patch.SeeActivity
	}
	if patch.SeeFullProfile != nil {
		merged.SeeFullProfile = *patch.SeeFullProfile
	}
	return merged
}
