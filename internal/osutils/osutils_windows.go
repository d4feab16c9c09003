//go:build windows

package osutils

import (
	"golang.org/x/sys/windows"
)

// IsAdmin reports whether the process token is elevated. SendInput cannot
// reach windows of elevated processes unless we are elevated too.
func IsAdmin() bool {
	token := windows.GetCurrentProcessToken()
	if token.IsElevated() {
		return true
	}

	// Elevation can be disabled by policy; fall back to group membership.
	sid, err := windows.CreateWellKnownSid(windows.WinBuiltinAdministratorsSid)
	if err != nil {
		return false
	}
	member, err := token.IsMember(sid)
	return err == nil && member
}
