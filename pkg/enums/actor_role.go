package enums

// ActorRole identifies which surface an authenticated caller belongs to.
type ActorRole string

const (
	ActorRoleAgent ActorRole = "agent"
	ActorRoleAdmin ActorRole = "admin"
)

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	return a == ActorRoleAgent || a == ActorRoleAdmin
}
