//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c -fmodules
#cgo LDFLAGS: -framework AVFoundation -framework ApplicationServices

#import <AVFoundation/AVFoundation.h>
#import <ApplicationServices/ApplicationServices.h>

int check_microphone_permission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

int check_accessibility_permission() {
    Boolean isAccessibilityEnabled = AXIsProcessTrusted();
    return isAccessibilityEnabled ? 1 : 0;
}
*/
import "C"

// PermissionChecker checks macOS privacy permissions
type PermissionChecker struct{}

// NewPermissionChecker creates a new permission checker
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{}
}

// CheckMicrophonePermission checks if the process has microphone access
func (pc *PermissionChecker) CheckMicrophonePermission() PermissionStatus {
	return PermissionStatus(C.check_microphone_permission())
}

// CheckAccessibilityPermission checks if the process is trusted for accessibility
func (pc *PermissionChecker) CheckAccessibilityPermission() PermissionStatus {
	if C.check_accessibility_permission() == 1 {
		return PermissionAuthorized
	}
	return PermissionDenied
}
