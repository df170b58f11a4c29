// Package config is the configuration store for the gamemoded daemon.
//
// Settings come from an INI file searched first in the working directory and
// then in /usr/share/gamemode/:
//
//	[filter]
//	whitelist=steam     ; clients allowed to request gamemode
//	blacklist=bash      ; clients always refused
//	[general]
//	reaper_freq=5       ; reaper wakeup interval in seconds
//	[custom]
//	start=notify-send "GameMode started"
//	end=notify-send "GameMode ended"
//
// A Store is built once at daemon startup and shared by every reader.
// Reload re-reads the file in place under an exclusive lock, so concurrent
// readers observe either the whole previous configuration or the whole new
// one, never a mix. A missing or partially malformed file is never fatal:
// the store degrades to defaults, or keeps whatever was ingested before the
// first bad line, and logs the rest.
//
// # Matching semantics
//
// Whitelist and blacklist entries are matched by plain case-sensitive
// substring containment with no anchoring: an entry "team" matches any
// client path containing "steam". This is deliberately broad. An empty
// whitelist admits every client, while an empty blacklist denies none.
package config
