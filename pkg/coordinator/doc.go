/*
Package coordinator implements the dialog coordinator.

The coordinator binds registered mission steps to world entities and arbitrates turn-taking:
at most one dialog plays at a time, while world events keep registering more. Steps attach
in one of three modes, resolved with precedence NPC > location > queue:

  - NPC: the character gets a mission mark and the player starts the dialog by interacting nearby.
  - Location: the dialog fires when the player walks within range.
  - Queue: the dialog fires on the next poll, wherever the player is.

When a dialog completes the coordinator records "<mission>/<step>/done" and chains the
mission's next step directly.
*/
package coordinator
