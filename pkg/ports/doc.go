/*
Package ports defines the driven ports (interfaces) of the questline engine.

These interfaces decouple the storyline core from external implementations, allowing
the engine to persist answers in various backends, report counters to remote services
and look up characters and locations in whatever world hosts the game.

# Key Interfaces

  - AnswerBackend: Durable storage for the answer store (memory, file, Redis).
  - Counter: Remote counter client used for best-effort telemetry.
  - World: Character and location lookups consumed by the coordinator.
  - Mover: The fade-out, reposition and fade-in effect that runs before a dialog.
*/
package ports
