package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	return "."
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

// DiscordWarningNotificationUrl falls back to the success channel.
func DiscordWarningNotificationUrl() string {
	if url := os.Getenv("DISCORD_WARNING_NOTIFICATION_URL"); url != "" {
		return url
	}
	return DiscordSuccessNotificationUrl()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func underRoot(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
