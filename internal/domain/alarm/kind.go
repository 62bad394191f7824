package alarm

import (
	"fmt"
	"strings"
)

// AlarmKind selects how alarm content is played.
type AlarmKind int

const (
	// KindSound plays a sound file from the sounds directory.
	KindSound AlarmKind = iota
	// KindPandora streams a Pandora station through pianobar.
	KindPandora
)

// ParseAlarmKind converts a configuration name into an AlarmKind.
func ParseAlarmKind(s string) (AlarmKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sound", "":
		return KindSound, nil
	case "pandora":
		return KindPandora, nil
	default:
		return 0, fmt.Errorf("%w: unknown alarm kind %q", ErrInvalidFieldValue, s)
	}
}

// String returns the configuration name of the kind.
func (k AlarmKind) String() string {
	switch k {
	case KindSound:
		return "sound"
	case KindPandora:
		return "pandora"
	default:
		return fmt.Sprintf("AlarmKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k AlarmKind) MarshalText() ([]byte, error) {
	if k != KindSound && k != KindPandora {
		return nil, fmt.Errorf("%w: alarm kind %d", ErrInvalidFieldValue, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AlarmKind) UnmarshalText(text []byte) error {
	parsed, err := ParseAlarmKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// Content is what an alarm plays: a kind plus a kind-specific selector
// (sound file name or station name).
type Content struct {
	// Kind chooses the player.
	Kind AlarmKind
	// Subtype is the sound name or station for Kind.
	Subtype string
}

// String renders the content as "kind:subtype".
func (c Content) String() string {
	return c.Kind.String() + ":" + c.Subtype
}
