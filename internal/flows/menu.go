package flows

import "github.com/flightdeck/adbot/pkg/domain"

// RoleMenuResponse returns the canned follow-up for a role selection
// submitted from the welcome card, and whether the selection was one of
// the known roles.
func RoleMenuResponse(title string) (string, bool) {
	switch title {
	case "Maintainer":
		return "You selected Maintainer. Please select what you want to get helped with. \n 1. Search AD \n2. View Analytics", true
	case "Maintenance Planner":
		return "You selected Maintenance Planner. Please select what you want to get helped with. \n 1. Search AD \n2. View Analytics", true
	case "Maintenance Manager":
		return "You selected Maintenance Manager. Please select what you want to get helped with. \n 1. Search AD \n2. View Analytics", true
	case "Administrator":
		return "You selected Maintenance Administrator. Please select what you want to get helped with. \n 1. Upload AD \n2. View Analytics", true
	default:
		return "Invalid selection.", false
	}
}

// HandleRoleSelection produces the reply for a menu submission and the
// role to record on the user's state (empty for invalid selections).
func HandleRoleSelection(selection domain.MenuSelection) (domain.Reply, string) {
	text, ok := RoleMenuResponse(selection.Title)
	if !ok {
		return domain.TextReply(text, domain.InputHintIgnoring), ""
	}
	return domain.TextReply(text, domain.InputHintIgnoring), selection.Title
}
