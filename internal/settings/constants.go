package settings

// DB config keys and defaults for site settings.
const (
	// ServerAddressKey is the setting key for the public game server address.
	ServerAddressKey = "server_address"
	// DefaultServerAddress is the fallback game server address.
	DefaultServerAddress = "play.voxeldragons.it"
	// SiteNameKey is the setting key for the public site name.
	SiteNameKey = "site_name"
	// DefaultSiteName is the fallback public site name.
	DefaultSiteName = "VoxelDragons"
	// DiscordURLKey is the setting key for the community Discord invite.
	DiscordURLKey = "discord_url"
	// DefaultDiscordURL is the fallback Discord invite link.
	DefaultDiscordURL = "https://discord.gg/voxeldragons"
)

// Defaults maps every seeded setting key to its default string value.
// Migration upserts these so admin updates never hit an unknown key.
var Defaults = map[string]string{
	ServerAddressKey: DefaultServerAddress,
	SiteNameKey:      DefaultSiteName,
	DiscordURLKey:    DefaultDiscordURL,
}
