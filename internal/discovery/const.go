package discovery

// EventPlatformDiscovered is the single bus topic carrying every discovery event.
const EventPlatformDiscovered = "platform_discovered"

// Event data keys.
const (
	AttrService    = "service"
	AttrDiscovered = "discovered"
	AttrPlatform   = "platform"
)

const loadPlatformPrefix = "load_platform."

// LoadPlatformTopic is the synthesized service value that addresses platform
// announcements for component.
func LoadPlatformTopic(component string) string {
	return loadPlatformPrefix + component
}
