package entity

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleShopManager   Role = "shop_manager"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleSubscriber    Role = "subscriber"
	RoleCustomer      Role = "customer"
)

// CapManageOrders is the capability required to read and mutate orders.
const CapManageOrders = "manage_orders"

var knownRoles = map[Role]bool{
	RoleAdministrator: true,
	RoleShopManager:   true,
	RoleEditor:        true,
	RoleAuthor:        true,
	RoleContributor:   true,
	RoleSubscriber:    true,
	RoleCustomer:      true,
}

var roleCapabilities = map[Role][]string{
	RoleAdministrator: {CapManageOrders},
	RoleShopManager:   {CapManageOrders},
}

func (r Role) Valid() bool {
	return knownRoles[r]
}

func (r Role) Can(capability string) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

// RoleAccess flags which roles may open the panel.
type RoleAccess map[Role]bool

func DefaultRoleAccess() RoleAccess {
	return RoleAccess{
		RoleShopManager:   true,
		RoleAdministrator: true,
	}
}
