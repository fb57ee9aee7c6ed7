// Package ws relays multiplayer presence over websockets.
//
// Each connection joins a room and publishes its properties (position, texture, frame),
// its display name and chat lines; the hub broadcasts them to the other participants.
// When a connection names a questline session, the player_name answer of that session
// renames the participant.
package ws
