package permissions

// PermissionStatus represents the status of a system permission
type PermissionStatus int

const (
	// PermissionNotDetermined means the user hasn't been asked yet
	PermissionNotDetermined PermissionStatus = 0
	// PermissionRestricted means the permission is restricted by parental controls
	PermissionRestricted PermissionStatus = 1
	// PermissionDenied means the user has explicitly denied the permission
	PermissionDenied PermissionStatus = 2
	// PermissionAuthorized means the user has authorized the permission
	PermissionAuthorized PermissionStatus = 3
)

// PermissionStatus string representation
func (ps PermissionStatus) String() string {
	switch ps {
	case PermissionNotDetermined:
		return "NotDetermined"
	case PermissionRestricted:
		return "Restricted"
	case PermissionDenied:
		return "Denied"
	case PermissionAuthorized:
		return "Authorized"
	default:
		return "Unknown"
	}
}

// Checker reports the status of the permissions ezs2st depends on
type Checker interface {
	CheckMicrophonePermission() PermissionStatus
	CheckAccessibilityPermission() PermissionStatus
}

// Missing describes a permission that is not granted
type Missing struct {
	Name   string
	Status PermissionStatus
	Hint   string
}

// Preflight returns the permissions that are not granted. Accessibility is
// only needed for the global stop hotkey. NotDetermined microphone access is
// not reported: the system prompts on first capture.
func Preflight(c Checker, needHotkey bool) []Missing {
	var missing []Missing

	switch status := c.CheckMicrophonePermission(); status {
	case PermissionAuthorized, PermissionNotDetermined:
	default:
		missing = append(missing, Missing{
			Name:   "microphone",
			Status: status,
			Hint:   "Allow microphone access for your terminal in System Settings > Privacy & Security > Microphone.",
		})
	}

	if needHotkey {
		if status := c.CheckAccessibilityPermission(); status != PermissionAuthorized {
			missing = append(missing, Missing{
				Name:   "accessibility",
				Status: status,
				Hint:   "The stop hotkey needs Accessibility access in System Settings > Privacy & Security > Accessibility.",
			})
		}
	}

	return missing
}
