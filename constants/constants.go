package constants

// Roles
const (
	ROLE_ADMIN           = "ADMIN"
	ROLE_QUALITY_ADMIN   = "QUALITY_ADMIN"
	ROLE_QUALITY_MANAGER = "QUALITY_MANAGER"
	ROLE_STAFF           = "STAFF"
	ROLE_CLIENT          = "CLIENT"
)

// Machine-readable error kinds returned next to every error message.
const (
	KIND_INVALID_DIMENSIONS     = "INVALID_DIMENSIONS"
	KIND_DUPLICATE_SHELF_LETTER = "DUPLICATE_SHELF_LETTER"
	KIND_CAPACITY_EXCEEDED      = "CAPACITY_EXCEEDED"
	KIND_NEGATIVE_OCCUPANCY     = "NEGATIVE_OCCUPANCY"
	KIND_FORBIDDEN              = "FORBIDDEN"
	KIND_NOT_FOUND              = "NOT_FOUND"
	KIND_CONFLICT               = "CONFLICT"
	KIND_PARTIAL_BULK_FAILURE   = "PARTIAL_BULK_FAILURE"
	KIND_ZERO_CAPACITY          = "ZERO_CAPACITY"
	KIND_BAD_INPUT              = "BAD_INPUT"
	KIND_INTERNAL               = "INTERNAL"
)

// StorageHistory actions
const (
	ACTION_PROVISION     = "PROVISION"
	ACTION_OCCUPANCY     = "OCCUPANCY"
	ACTION_ASSIGN        = "ASSIGN"
	ACTION_UNASSIGN      = "UNASSIGN"
	ACTION_VISIBILITY    = "VISIBILITY"
	ACTION_SHRINK_DELETE = "SHRINK_DELETE"
	ACTION_CODE_RENAME   = "CODE_RENAME"
)

// Messages
const (
	MISSING_LOGIN_INPUT        = "Username and password are required"
	INVALID_USERNAME           = "Username does not exist"
	INVALID_PASSWORD           = "Password is incorrect"
	ACCOUNT_NOT_ACTIVE         = "Account is deactivated"
	ACCOUNT_NOT_PERMISSION     = "Account does not have permission"
	NOT_ADMIN                  = "Only administrators can perform this action"
	ERROR_INTERNAL_ERROR       = "Internal server error"
	ERROR_PARSE_DATA_TO_LOCALS = "Cannot read validated input"
	ERROR_INPUT                = "Invalid input"
	ERROR_CREATE               = "Create failed"
	ERROR_EDIT                 = "Update failed"
	ERROR_DELETE               = "Delete failed"
	NOT_FOUND_RECORDS          = "Records not found"
	DATA_INPUT_IS_NOT_NUMBER   = "Parameter must be a number"
)
