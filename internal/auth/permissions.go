package auth

import "github.com/mgltickets/api/internal/models"

type Capability string

const (
	CapEventsRead       Capability = "events:read"
	CapEventsWrite      Capability = "events:write"
	CapEventsModerate   Capability = "events:moderate"
	CapTicketTypesWrite Capability = "ticket_types:write"
	CapBookingsCreate   Capability = "bookings:create"
	CapBookingsManage   Capability = "bookings:manage"
	CapTicketsRead      Capability = "tickets:read"
	CapTicketsValidate  Capability = "tickets:validate"
	CapTicketsManage    Capability = "tickets:manage"
	CapPaymentsManage   Capability = "payments:manage"
	CapUsersManage      Capability = "users:manage"
)

var attendeeCapabilities = []Capability{
	CapEventsRead,
	CapBookingsCreate,
	CapTicketsRead,
}

var organizerCapabilities = append([]Capability{
	CapEventsWrite,
	CapTicketTypesWrite,
	CapTicketsValidate,
}, attendeeCapabilities...)

var adminCapabilities = append([]Capability{
	CapEventsModerate,
	CapUsersManage,
	CapPaymentsManage,
	CapBookingsManage,
	CapTicketsManage,
}, organizerCapabilities...)

var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleAttendee:  toSet(attendeeCapabilities),
	models.RoleOrganizer: toSet(organizerCapabilities),
	models.RoleAdmin:     toSet(adminCapabilities),
}

func toSet(capabilities []Capability) map[Capability]bool {
	set := make(map[Capability]bool, len(capabilities))
	for _, capability := range capabilities {
		set[capability] = true
	}
	return set
}

// Can reports whether role grants capability. Unknown roles grant nothing.
func Can(role models.Role, capability Capability) bool {
	return roleCapabilities[role][capability]
}
