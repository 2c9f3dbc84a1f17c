package authorize

// DefaultPolicies is what each role may do. Ownership (which crisis, which
// conversation) is checked by the services; this only gates the route.
var DefaultPolicies = []PermissionPolicy{
	// Psychologists run the practice.
	{RolePsychologist, ResourceInvite, ActionCreate, EffectAllow},
	{RolePsychologist, ResourcePatient, ActionList, EffectAllow},
	{RolePsychologist, ResourceCrisis, ActionList, EffectAllow},
	{RolePsychologist, ResourceCrisis, ActionRead, EffectAllow},
	{RolePsychologist, ResourceCrisis, ActionUpdate, EffectAllow},
	{RolePsychologist, ResourceCrisis, ActionCreate, EffectDeny},

	// Patients raise crises and follow them.
	{RolePatient, ResourceCrisis, ActionCreate, EffectAllow},
	{RolePatient, ResourceCrisis, ActionList, EffectAllow},
	{RolePatient, ResourceCrisis, ActionRead, EffectAllow},

	// Both sides chat, read their inbox and their own profile.
	{RolePsychologist, ResourceMessage, WildcardAction, EffectAllow},
	{RolePatient, ResourceMessage, WildcardAction, EffectAllow},
	{RolePsychologist, ResourceNotification, WildcardAction, EffectAllow},
	{RolePatient, ResourceNotification, WildcardAction, EffectAllow},
	{RolePsychologist, ResourceProfile, ActionRead, EffectAllow},
	{RolePatient, ResourceProfile, ActionRead, EffectAllow},
}

// NewDefault returns an enforcer loaded with DefaultPolicies.
func NewDefault() (*Authorization, error) {
	return NewAuthorization(DefaultPolicies)
}
