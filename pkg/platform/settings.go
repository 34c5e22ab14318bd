package platform

// Settings is the singleton settings launcher.
var Settings = &SettingsService{
	channel: NewMethodChannel("drift/settings"),
}

// SettingsService opens OS settings screens. Launches are fire-and-forget:
// the user comes back on their own, which shows up as a lifecycle resume.
type SettingsService struct {
	channel *MethodChannel
}

// OpenAppSettings opens this application's settings page, where the user can
// change its location authorization.
//
// On iOS, opens the Settings app to the app's page.
// On Android, opens the App Info screen in system settings.
func (s *SettingsService) OpenAppSettings() error {
	_, err := s.channel.Invoke("openAppSettings", nil)
	return err
}

// OpenLocationSettings opens the device-wide location settings, where the
// user can switch location services on.
//
// On iOS the dedicated location page is not reachable by apps; native code
// falls back to the app's settings page.
func (s *SettingsService) OpenLocationSettings() error {
	_, err := s.channel.Invoke("openLocationSettings", nil)
	return err
}
