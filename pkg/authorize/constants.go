package authorize

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionList   Action = "list"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionList: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	ResourceInvite       Resource = "invite"
	ResourcePatient      Resource = "patient"
	ResourceCrisis       Resource = "crisis"
	ResourceMessage      Resource = "message"
	ResourceNotification Resource = "notification"
	ResourceProfile      Resource = "profile"

	WildcardResource Resource = "*"
)

var KnownResources = map[Resource]struct{}{
	ResourceInvite: {}, ResourcePatient: {}, ResourceCrisis: {},
	ResourceMessage: {}, ResourceNotification: {}, ResourceProfile: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Policy subjects are account roles, one per user.

const (
	RolePatient      Role = "patient"
	RolePsychologist Role = "psychologist"
)

var KnownRoles = map[Role]struct{}{
	RolePatient:      {},
	RolePsychologist: {},
}

// ----------------------------
// Policy effects
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one "p" line: role may (or may not) do action on object.
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
