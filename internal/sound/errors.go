package sound

import "errors"

// Code is the outcome of a command. OK is the only success value.
type Code int

// Command outcomes, grouped as lookup, registration, topology, range,
// subscription, mixer and environment failures.
const (
	OK Code = iota

	DoesNotExist
	MissingWrapper
	MissingSource
	MissingClip

	AlreadyExists
	InvalidPath

	InvalidChild
	InvalidParent
	MissingParent
	CanNotBe3D

	InvalidTime
	InvalidEndValue
	InvalidGranularity
	InvalidProgress

	AlreadySubscribed
	NotSubscribed

	MissingMixerGroup
	MixerNotExposed

	NotInitialized
)

var codeNames = [...]string{
	OK:                 "OK",
	DoesNotExist:       "DOES_NOT_EXIST",
	MissingWrapper:     "MISSING_WRAPPER",
	MissingSource:      "MISSING_SOURCE",
	MissingClip:        "MISSING_CLIP",
	AlreadyExists:      "ALREADY_EXISTS",
	InvalidPath:        "INVALID_PATH",
	InvalidChild:       "INVALID_CHILD",
	InvalidParent:      "INVALID_PARENT",
	MissingParent:      "MISSING_PARENT",
	CanNotBe3D:         "CAN_NOT_BE_3D",
	InvalidTime:        "INVALID_TIME",
	InvalidEndValue:    "INVALID_END_VALUE",
	InvalidGranularity: "INVALID_GRANULARITY",
	InvalidProgress:    "INVALID_PROGRESS",
	AlreadySubscribed:  "ALREADY_SUBSCRIBED",
	NotSubscribed:      "NOT_SUBSCRIBED",
	MissingMixerGroup:  "MISSING_MIXER_GROUP",
	MixerNotExposed:    "MIXER_NOT_EXPOSED",
	NotInitialized:     "NOT_INITIALIZED",
}

// String returns the wire name of the code (e.g. "DOES_NOT_EXIST").
func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "UNKNOWN"
	}
	return codeNames[c]
}

// MarshalText lets codes appear by name in JSON payloads.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Domain errors for the sound package.
//
// Code.Err maps each failure code onto one of these so callers outside the
// tick loop can use errors.Is():
//
//	if errors.Is(code.Err(), sound.ErrDoesNotExist) {
//	    // handle unknown name
//	}
var (
	ErrDoesNotExist       = errors.New("sound: does not exist")
	ErrMissingWrapper     = errors.New("sound: missing wrapper")
	ErrMissingSource      = errors.New("sound: missing source")
	ErrMissingClip        = errors.New("sound: missing clip")
	ErrAlreadyExists      = errors.New("sound: already exists")
	ErrInvalidPath        = errors.New("sound: invalid path")
	ErrInvalidChild       = errors.New("sound: invalid child")
	ErrInvalidParent      = errors.New("sound: invalid parent")
	ErrMissingParent      = errors.New("sound: missing parent")
	ErrCanNotBe3D         = errors.New("sound: can not be 3D")
	ErrInvalidTime        = errors.New("sound: invalid time")
	ErrInvalidEndValue    = errors.New("sound: invalid end value")
	ErrInvalidGranularity = errors.New("sound: invalid granularity")
	ErrInvalidProgress    = errors.New("sound: invalid progress")
	ErrAlreadySubscribed  = errors.New("sound: already subscribed")
	ErrNotSubscribed      = errors.New("sound: not subscribed")
	ErrMissingMixerGroup  = errors.New("sound: missing mixer group")
	ErrMixerNotExposed    = errors.New("sound: mixer parameter not exposed")
	ErrNotInitialized     = errors.New("sound: not initialized")
)

var codeErrors = map[Code]error{
	DoesNotExist:       ErrDoesNotExist,
	MissingWrapper:     ErrMissingWrapper,
	MissingSource:      ErrMissingSource,
	MissingClip:        ErrMissingClip,
	AlreadyExists:      ErrAlreadyExists,
	InvalidPath:        ErrInvalidPath,
	InvalidChild:       ErrInvalidChild,
	InvalidParent:      ErrInvalidParent,
	MissingParent:      ErrMissingParent,
	CanNotBe3D:         ErrCanNotBe3D,
	InvalidTime:        ErrInvalidTime,
	InvalidEndValue:    ErrInvalidEndValue,
	InvalidGranularity: ErrInvalidGranularity,
	InvalidProgress:    ErrInvalidProgress,
	AlreadySubscribed:  ErrAlreadySubscribed,
	NotSubscribed:      ErrNotSubscribed,
	MissingMixerGroup:  ErrMissingMixerGroup,
	MixerNotExposed:    ErrMixerNotExposed,
	NotInitialized:     ErrNotInitialized,
}

// Err returns nil for OK and the matching sentinel error otherwise.
func (c Code) Err() error {
	if c == OK {
		return nil
	}
	if err, ok := codeErrors[c]; ok {
		return err
	}
	return errors.New("sound: unknown code " + c.String())
}
