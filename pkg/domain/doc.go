/*
Package domain contains the storyline model of the questline engine.

It defines missions, steps, dialogs and dialog items, the dependency rules that gate
missions on recorded answers, and the lifecycle events the engine emits. The package
is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Storyline: the arena owning every Mission and MissionStep, looked up by id.
  - Mission: a dependency-gated chain of steps.
  - MissionStep: one attachable unit bound to an NPC, a location or the trigger queue.
  - Dialog: the ordered, branchable script of a step.
  - DialogItem: a closed sum type over Line, Select, Prompt, Message and Iframe.
*/
package domain
