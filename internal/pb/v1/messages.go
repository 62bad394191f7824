package pb

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Message keys.
const (
	// KeyButton is the pressed button name of a PressButton request.
	KeyButton = "button"
	// KeyActor is the caller object of PressButton and SetField requests.
	KeyActor = "actor"
	// KeyHostname is the host of an actor.
	KeyHostname = "hostname"
	// KeyUsername is the user of an actor.
	KeyUsername = "username"
	// KeyAccepted reports whether a press was queued.
	KeyAccepted = "accepted"

	// KeyState is the engine state of a GetStatus reply.
	KeyState = "state"
	// KeyNow is the daemon clock of a GetStatus reply.
	KeyNow = "now"
	// KeyEpisode is the firing alarm of a GetStatus reply.
	KeyEpisode = "episode"
	// KeyID identifies an episode.
	KeyID = "id"
	// KeySource is the alarm source of an episode.
	KeySource = "source"
	// KeyContent is the alarm content of an episode or day.
	KeyContent = "content"
	// KeyStartedAt is when an episode started, RFC 3339.
	KeyStartedAt = "started_at"
	// KeyTarget is the scheduled instant of an episode, RFC 3339.
	KeyTarget = "target"

	// KeyGlobal holds the global settings of a schedule.
	KeyGlobal = "global"
	// KeyDays lists the daily settings of a schedule.
	KeyDays = "days"
	// KeyDay names a day.
	KeyDay = "day"
	// KeyField names the setting of a SetField request.
	KeyField = "field"
	// KeyValue is the new value of a SetField request.
	KeyValue = "value"
)

// NewActor builds an actor object.
func NewActor(hostname, username string) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			KeyHostname: structpb.NewStringValue(hostname),
			KeyUsername: structpb.NewStringValue(username),
		},
	})
}

// String returns the string at key, or "" when absent or not a string.
func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Bool returns the bool at key, or false when absent.
func Bool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// Struct returns the object at key, or nil when absent.
func Struct(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

// Has reports whether key is present.
func Has(s *structpb.Struct, key string) bool {
	_, ok := s.GetFields()[key]

	return ok
}
