//go:build !darwin

package permissions

// PermissionChecker reports every permission as granted. Access control is
// left to the audio and input subsystems on these platforms.
type PermissionChecker struct{}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{}
}

// CheckMicrophonePermission always returns PermissionAuthorized
func (pc *PermissionChecker) CheckMicrophonePermission() PermissionStatus {
	return PermissionAuthorized
}

// CheckAccessibilityPermission always returns PermissionAuthorized
func (pc *PermissionChecker) CheckAccessibilityPermission() PermissionStatus {
	return PermissionAuthorized
}
