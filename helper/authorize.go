package helper

import "lab_storage/constants"

// CanManageStorage is the assignment/mutation gate: global admins and
// quality admins may manage any laboratory, quality managers only the
// laboratory they are scoped to. Everyone else is refused.
func CanManageStorage(role string, callerLabId *uint, targetLabId uint) bool {
	switch role {
	case constants.ROLE_ADMIN, constants.ROLE_QUALITY_ADMIN:
		return true
	case constants.ROLE_QUALITY_MANAGER:
		return callerLabId != nil && *callerLabId == targetLabId
	default:
		return false
	}
}
