// Package mixer is the in-memory mix bus backend. Buses and the parameters
// they expose come from the mixer section of the YAML:
//
//	mixer:
//	  buses:
//	    - name: sfx
//	      params: {volume: 1.0, lowpass_hz: 20000}
//
// The sound manager reads and writes them through sound.BusBackend.
package mixer
