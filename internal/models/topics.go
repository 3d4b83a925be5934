package models

// Topics on the session broadcast channel. The channel is the only rendezvous
// between the bridge and the remote agent when Direct Transport is not usable.
const (
	TopicLocalCommands = "local_commands"
	TopicSystemMetrics = "system_metrics"
	TopicSystemAlert   = "system_alert"
	TopicNotifications = "notifications"
	// TopicSpeakRequest asks whichever participant owns voice output to say
	// the payload aloud.
	TopicSpeakRequest = "speak_request"
)
