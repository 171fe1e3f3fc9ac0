package mqtt

import "strings"

// TopicPrefix is the root of every audio topic.
const TopicPrefix = "graylogic/audio"

// Topics builds the audio service's topic names.
//
//	graylogic/audio/state/{sound}           retained SoundState
//	graylogic/audio/progress/{sound}        progress notifications
//	graylogic/audio/bus/{bus}/{param}       retained bus parameter values
//	graylogic/audio/command/{sound}         inbound commands
//	graylogic/audio/result/{sound}          command outcomes
//	graylogic/audio/system/status           retained online/offline
type Topics struct{}

// State is where a sound's snapshot is published after each change.
func (Topics) State(sound string) string {
	return TopicPrefix + "/state/" + sound
}

// Progress carries one message per fired progress watch.
func (Topics) Progress(sound string) string {
	return TopicPrefix + "/progress/" + sound
}

// Bus carries a bus parameter value.
func (Topics) Bus(bus, param string) string {
	return TopicPrefix + "/bus/" + bus + "/" + param
}

// Command is the inbound command topic for one sound.
func (Topics) Command(sound string) string {
	return TopicPrefix + "/command/" + sound
}

// Result carries the outcome of a command received on Command.
func (Topics) Result(sound string) string {
	return TopicPrefix + "/result/" + sound
}

// AllCommands matches every sound's command topic.
func (Topics) AllCommands() string {
	return TopicPrefix + "/command/+"
}

// Status is the retained online/offline topic.
func (Topics) Status() string {
	return TopicPrefix + "/system/status"
}

// SoundFromCommand extracts the sound name from a command topic.
func SoundFromCommand(topic string) (string, bool) {
	sound, ok := strings.CutPrefix(topic, TopicPrefix+"/command/")
	if !ok || sound == "" || strings.Contains(sound, "/") {
		return "", false
	}
	return sound, true
}
